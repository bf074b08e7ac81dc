package session

import (
	"context"
	"errors"
	"time"

	"timesheet/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session binds a session id to an identity. It never holds credentials.
type Session struct {
	ID        string      `json:"id"`
	UserID    uint        `json:"user_id"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s *Session) Principal() models.Principal {
	return models.Principal{UserID: s.UserID, Role: s.Role}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store keeps sessions server side.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func NewID() string {
	return uuid.NewString()
}
