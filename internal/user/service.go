package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingField       = errors.New("name and email are required")
)

const tokenTTL = 24 * time.Hour

// Store is the persistence surface the service needs
type Store interface {
	Create(ctx context.Context, name, email, passwordHash string, phone, slackID *string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// Service handles user accounts and authentication
type Service struct {
	store     Store
	jwtSecret string
}

// NewService creates a new user service
func NewService(store Store, jwtSecret string) *Service {
	return &Service{store: store, jwtSecret: jwtSecret}
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, error) {
	if req.Name == "" || req.Email == "" {
		return nil, "", ErrMissingField
	}
	if len(req.Password) < 8 {
		return nil, "", ErrWeakPassword
	}

	existing, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.Create(ctx, req.Name, req.Email, string(hash), req.Phone, req.SlackID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns all users for the participant picker
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// issueToken signs an HS256 token with the user ID as subject.
func (s *Service) issueToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
