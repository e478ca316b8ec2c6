package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aerocall/server/internal/model"
)

// SessionRepo defines the interface for session record operations
type SessionRepo interface {
	Create(ctx context.Context, s model.Session) error
	FindActiveByTokenHash(ctx context.Context, tokenHash string) (model.Session, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
}

type sessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo instance
func NewSessionRepo(db *sql.DB) SessionRepo {
	return &sessionRepo{db: db}
}

// Create inserts a new session record
func (r *sessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.UserID, s.TokenHash, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindActiveByTokenHash returns the session if it exists, is not revoked,
// and has not expired
func (r *sessionRepo) FindActiveByTokenHash(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
		FROM sessions
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > now()
	`, tokenHash).Scan(
		&s.ID,
		&s.UserID,
		&s.TokenHash,
		&s.CreatedAt,
		&s.ExpiresAt,
		&s.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}
		return model.Session{}, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

// RevokeByTokenHash sets revoked_at for the session. Revoking an unknown or
// already revoked session is a no-op.
func (r *sessionRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
