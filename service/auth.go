package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timesheet/models"
	"timesheet/repository"
	"timesheet/session"

	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is the one answer for every failed login.
const invalidCredentials = "invalid username or password"

// AuthService logs users in and out and resolves sessions.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, *session.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, sessionID string) (*session.Session, error)
	CurrentUser(ctx context.Context, p models.Principal) (*models.User, error)
	CreateUser(ctx context.Context, input NewUser) (*models.User, error)
}

type NewUser struct {
	Username string
	Name     string
	Role     string
	Password string
}

type AuthConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

type authService struct {
	users    repository.UserRepository
	sessions session.Store
	cfg      AuthConfig
	now      func() time.Time

	// dummyHash is compared against when the username does not exist.
	dummyHash []byte
}

func NewAuthService(users repository.UserRepository, sessions session.Store, cfg AuthConfig) (AuthService, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("timesheet-no-such-user"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &authService{
		users:     users,
		sessions:  sessions,
		cfg:       cfg,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, *session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, Validation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		// Spend the same bcrypt time an existing user would cost.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil, Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, nil, Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, Unauthorized(invalidCredentials)
	}

	sess := session.Session{
		ID:        session.NewID(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, nil, Internal(err)
	}
	return user, &sess, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return Internal(err)
	}
	return nil
}

func (s *authService) Resolve(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, Unauthorized("authentication required")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return sess, nil
}

func (s *authService) CurrentUser(ctx context.Context, p models.Principal) (*models.User, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Unauthorized("authentication required")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, input NewUser) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	if len(username) < 3 {
		return nil, Validation("username must be at least 3 characters")
	}
	if name == "" {
		name = username
	}
	role, ok := models.ParseRole(input.Role)
	if !ok {
		return nil, Validation("role must be employee, manager or admin")
	}
	if len(input.Password) < 8 {
		return nil, Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, Internal(err)
	}

	user := &models.User{
		Username:     username,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("username already exists")
		}
		return nil, Internal(err)
	}
	return user, nil
}
