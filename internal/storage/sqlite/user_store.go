package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// UserStore implements user and auth session persistence backed by SQLite.
type UserStore struct {
	db *DB
}

// NewUserStore creates a new SQLite-backed user store.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new user. Email uniqueness is enforced by the schema.
func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id.String())

	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
		FROM users WHERE email = ?`, email)

	return scanUser(row)
}

// CreateSession inserts a new auth session.
func (s *UserStore) CreateSession(ctx context.Context, sess *domain.AuthSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID.String(), sess.UserID.String(), sess.Token, sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionByToken retrieves a session by its bearer token.
func (s *UserStore) GetSessionByToken(ctx context.Context, token string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM auth_sessions WHERE token = ?`, token)

	var sess domain.AuthSession
	var id, userID string

	err := row.Scan(&id, &userID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuthSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	sess.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes a session by token (logout).
func (s *UserStore) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrAuthSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions prunes sessions past their expiry.
func (s *UserStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var id string

	err := row.Scan(&id, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	return &u, nil
}
