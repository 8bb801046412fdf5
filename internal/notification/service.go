package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests provide an in-memory fake.
type Store interface {
	Create(ctx context.Context, userID int64, title, message string, route *string, params RouteParams) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Notify creates a notification for a user, optionally with a deep link.
func (s *Service) Notify(ctx context.Context, userID int64, title, message string, route *string, params RouteParams) (*Notification, error) {
	return s.store.Create(ctx, userID, title, message, route, params)
}

// List returns the user's undeleted notifications, newest first, together
// with the unread count.
func (s *Service) List(ctx context.Context, userID int64) ([]*Notification, int, error) {
	notifications, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

// MarkRead marks a notification as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, id, actorID int64) error {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.UserID != actorID {
		return ErrNotRecipient
	}
	if n.Read {
		return nil
	}

	return s.store.MarkRead(ctx, id)
}

// MarkAllRead marks every unread notification of the actor as read.
func (s *Service) MarkAllRead(ctx context.Context, actorID int64) error {
	return s.store.MarkAllRead(ctx, actorID)
}

// UnreadCount returns the actor's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, actorID int64) (int, error) {
	return s.store.UnreadCount(ctx, actorID)
}
