package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/repo"
)

// SessionTTL is the fixed lifetime of a session artifact (5 days). Sessions
// are never silently renewed.
const SessionTTL = 5 * 24 * time.Hour

// ErrInvalidSession is returned for any session artifact that fails
// verification. Malformed, expired, and revoked all collapse to this single
// error so callers cannot distinguish failure causes.
var ErrInvalidSession = errors.New("auth: invalid session")

// SessionClaims are the claims carried by session artifacts
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionService mints and verifies session artifacts. Artifacts are signed
// JWTs backed by a sessions row, so revocation takes effect server-side even
// if a client retains the cookie value.
type SessionService struct {
	secret   []byte
	sessions repo.SessionRepo
	now      func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(secret string, sessions repo.SessionRepo) *SessionService {
	return &SessionService{
		secret:   []byte(secret),
		sessions: sessions,
		now:      time.Now,
	}
}

// Issue mints a session artifact for the subject and records it. Returns the
// signed artifact for the cookie value.
func (s *SessionService) Issue(ctx context.Context, uid string) (string, error) {
	now := s.now()
	expiresAt := now.Add(SessionTTL)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	artifact, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	record := model.Session{
		ID:        uuid.MustParse(claims.ID),
		UserID:    uid,
		TokenHash: HashToken(artifact),
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return "", fmt.Errorf("record session: %w", err)
	}

	return artifact, nil
}

// Verify validates the artifact's signature and expiry and checks the
// backing record has not been revoked. Returns the subject id.
func (s *SessionService) Verify(ctx context.Context, artifact string) (string, error) {
	token, err := jwt.ParseWithClaims(artifact, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}

	record, err := s.sessions.FindActiveByTokenHash(ctx, HashToken(artifact))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidSession
		}
		return "", fmt.Errorf("session lookup: %w", err)
	}
	if record.UserID != claims.Subject {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}

// Revoke invalidates the artifact's backing record. Idempotent: revoking an
// unknown or already revoked artifact succeeds.
func (s *SessionService) Revoke(ctx context.Context, artifact string) error {
	return s.sessions.RevokeByTokenHash(ctx, HashToken(artifact))
}
