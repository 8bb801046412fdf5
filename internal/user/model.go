package user

import "time"

// User represents a participant identity. SlackID links the account to the
// workspace member used for settlement announcements.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	SlackID      *string   `json:"slack_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
