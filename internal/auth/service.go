package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aerocall/server/internal/apperr"
	"github.com/aerocall/server/internal/identity"
	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/repo"
)

// Service orchestrates session issuance: identity token verification,
// user provisioning, and session minting.
type Service struct {
	identity identity.Verifier
	sessions *SessionService
	users    repo.UserRepo
}

// NewService creates a new auth service
func NewService(verifier identity.Verifier, sessions *SessionService, users repo.UserRepo) *Service {
	return &Service{
		identity: verifier,
		sessions: sessions,
		users:    users,
	}
}

// IssueSession verifies the identity token, provisions the user record on
// first login, and returns a session artifact for the cookie.
func (s *Service) IssueSession(ctx context.Context, idToken string) (string, error) {
	subject, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return "", apperr.Wrap(apperr.Unavailable,
				"Authentication service not available. Please try again later.", err)
		}
		return "", apperr.Wrap(apperr.Authentication, "Invalid token.", err)
	}

	if err := s.provision(ctx, subject); err != nil {
		return "", apperr.Wrap(apperr.Upstream, "Failed to provision account.", err)
	}

	artifact, err := s.sessions.Issue(ctx, subject.UID)
	if err != nil {
		return "", apperr.Wrap(apperr.Upstream, "Failed to create session.", err)
	}
	return artifact, nil
}

// provision creates the user record with a deterministic team id on first
// session issuance. Team assignment happens here, at account creation, not
// lazily on first profile access.
func (s *Service) provision(ctx context.Context, subject identity.Subject) error {
	_, err := s.users.GetByID(ctx, subject.UID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("load user: %w", err)
	}

	user := model.User{
		ID:     subject.UID,
		Email:  subject.Email,
		Name:   subject.Name,
		Role:   model.RoleAdmin,
		TeamID: TeamIDFor(subject.UID),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent first login may have created the record already
		if errors.Is(err, repo.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// TeamIDFor derives the initial team id for a subject
func TeamIDFor(uid string) string {
	return "team_" + uid
}
