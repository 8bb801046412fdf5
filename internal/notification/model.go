package notification

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RouteParams are the parameters of the deep-link route, stored as JSONB.
type RouteParams map[string]interface{}

// Value implements driver.Valuer so RouteParams can be written as JSONB.
func (p RouteParams) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for reading JSONB columns.
func (p *RouteParams) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected route_params type %T", src)
	}
	return json.Unmarshal(raw, p)
}

// Notification is an in-app message for a single user. Route and RouteParams
// let the client deep-link to the screen the message is about.
type Notification struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Route       *string     `json:"route,omitempty"`
	RouteParams RouteParams `json:"route_params,omitempty"`
	Read        bool        `json:"read"`
	CreatedAt   time.Time   `json:"created_at"`
}
