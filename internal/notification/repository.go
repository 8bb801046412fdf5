package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, userID int64, title, message string, route *string, params RouteParams) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message, route, route_params, read)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING id, user_id, title, message, route, route_params, read, created_at
	`

	n := &Notification{}
	err := r.db.QueryRowContext(ctx, query, userID, title, message, route, params).Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Route,
		&n.RouteParams,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

// GetByID retrieves an undeleted notification by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Notification, error) {
	query := `
		SELECT id, user_id, title, message, route, route_params, read, created_at
		FROM notifications
		WHERE id = $1 AND deleted_at IS NULL
	`

	n := &Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Route,
		&n.RouteParams,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListByUserID retrieves all undeleted notifications for a user, newest first
func (r *Repository) ListByUserID(ctx context.Context, userID int64) ([]*Notification, error) {
	query := `
		SELECT id, user_id, title, message, route, route_params, read, created_at
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Route,
			&n.RouteParams,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkRead marks a notification as read
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllRead marks all unread notifications as read for a user
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// UnreadCount returns the count of unread notifications for a user
func (r *Repository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
