// Package auth provides account registration and bearer-token sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// Store is the persistence interface the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	CreateSession(ctx context.Context, sess *domain.AuthSession) error
	GetSessionByToken(ctx context.Context, token string) (*domain.AuthSession, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

const (
	minPasswordLength = 8
	tokenBytes        = 32
)

// Service handles registration, login, and token validation.
type Service struct {
	store      Store
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewService creates an auth service. sessionTTL bounds how long issued
// tokens stay valid.
func NewService(store Store, sessionTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates a new account and returns the user with a fresh session.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, *domain.AuthSession, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if len(password) < minPasswordLength {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if firstName == "" || lastName == "" {
		return nil, nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	sess, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", email)
	return user, sess, nil
}

// Login verifies credentials and issues a new session. A failed lookup and a
// failed password check return the same error so callers cannot probe which
// emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *domain.AuthSession, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidPassword
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidPassword
	}

	sess, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, sess, nil
}

// Logout revokes the session behind the given token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// ValidateToken resolves a bearer token to its user. Expired sessions are
// revoked on sight.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAuthSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if sess.Expired() {
		if err := s.store.DeleteSession(ctx, token); err != nil && !errors.Is(err, domain.ErrAuthSessionNotFound) {
			s.logger.Warn("failed to revoke expired session", "error", err)
		}
		return nil, domain.ErrAuthSessionExpired
	}

	return s.store.GetUser(ctx, sess.UserID)
}

// PruneExpired deletes all expired sessions, returning the count removed.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx)
}

func (s *Service) issueSession(ctx context.Context, userID uuid.UUID) (*domain.AuthSession, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domain.AuthSession{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	return nil
}
