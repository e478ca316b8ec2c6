// Package team implements team-scoped profile, roster, and invitation
// management. Every operation resolves the caller's team from their own user
// record; records outside that team are reported as not found.
package team

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aerocall/server/internal/apperr"
	"github.com/aerocall/server/internal/auth"
	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/repo"
)

// invitationTTL is how long a pending invitation stays valid
const invitationTTL = 7 * 24 * time.Hour

// Service handles team and profile operations
type Service struct {
	users   repo.UserRepo
	invites repo.InvitationRepo
}

// NewService creates a new team service
func NewService(users repo.UserRepo, invites repo.InvitationRepo) *Service {
	return &Service{users: users, invites: invites}
}

// caller loads the authenticated user's record. The uid comes from session
// verification, never from client input.
func (s *Service) caller(ctx context.Context, uid string) (model.User, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, apperr.New(apperr.NotFound, "User profile not found.")
		}
		return model.User{}, apperr.Wrap(apperr.Upstream, "Failed to load user profile.", err)
	}
	return user, nil
}

// Profile returns the caller's own user record
func (s *Service) Profile(ctx context.Context, uid string) (model.User, error) {
	return s.caller(ctx, uid)
}

// UpdateProfile validates and applies profile changes, recomputing the
// display name from first and last name.
func (s *Service) UpdateProfile(ctx context.Context, uid string, p model.ProfileUpdate) (model.User, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" {
		return model.User{}, apperr.New(apperr.Validation, "First name is required.")
	}
	if p.LastName == "" {
		return model.User{}, apperr.New(apperr.Validation, "Last name is required.")
	}

	if _, err := s.caller(ctx, uid); err != nil {
		return model.User{}, err
	}

	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if err := s.users.UpdateProfile(ctx, uid, name, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, apperr.New(apperr.NotFound, "User profile not found.")
		}
		return model.User{}, apperr.Wrap(apperr.Upstream, "Failed to update profile.", err)
	}
	return s.caller(ctx, uid)
}

// Members returns the caller's team roster: active members plus pending
// invitations. Both queries run concurrently.
func (s *Service) Members(ctx context.Context, uid string) ([]model.TeamMember, error) {
	user, err := s.caller(ctx, uid)
	if err != nil {
		return nil, err
	}

	var (
		users   []model.User
		invites []model.Invitation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.ListByTeam(gctx, user.TeamID)
		return err
	})
	g.Go(func() error {
		var err error
		invites, err = s.invites.ListByTeam(gctx, user.TeamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "Failed to fetch team members.", err)
	}

	members := make([]model.TeamMember, 0, len(users)+len(invites))
	for _, u := range users {
		members = append(members, model.TeamMember{
			ID:     u.ID,
			Email:  u.Email,
			Name:   u.Name,
			Role:   u.Role,
			Status: model.MemberActive,
		})
	}
	for _, inv := range invites {
		members = append(members, model.TeamMember{
			ID:     inv.ID.String(),
			Email:  inv.Email,
			Role:   inv.Role,
			Status: model.MemberPending,
		})
	}
	return members, nil
}

// Invite creates a pending invitation in the caller's team. Duplicate active
// members and duplicate pending invitations are rejected; the database
// uniqueness constraint closes the read-then-write race by rejecting the
// second writer.
func (s *Service) Invite(ctx context.Context, uid, email string, role model.Role) (model.Invitation, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Invitation{}, apperr.New(apperr.Validation, "Invalid email address.")
	}
	if !role.Valid() {
		return model.Invitation{}, apperr.New(apperr.Validation, "Invalid role specified.")
	}

	user, err := s.caller(ctx, uid)
	if err != nil {
		return model.Invitation{}, err
	}

	memberExists, err := s.users.ExistsByEmailInTeam(ctx, user.TeamID, email)
	if err != nil {
		return model.Invitation{}, apperr.Wrap(apperr.Upstream, "Failed to check team members.", err)
	}
	if memberExists {
		return model.Invitation{}, apperr.New(apperr.Validation,
			"A user with this email already exists in your team.")
	}

	inviteExists, err := s.invites.ExistsByEmailInTeam(ctx, user.TeamID, email)
	if err != nil {
		return model.Invitation{}, apperr.Wrap(apperr.Upstream, "Failed to check invitations.", err)
	}
	if inviteExists {
		return model.Invitation{}, apperr.New(apperr.Validation,
			"An invitation has already been sent to this email address.")
	}

	token, err := auth.GenerateInviteToken()
	if err != nil {
		return model.Invitation{}, apperr.Wrap(apperr.Upstream, "Failed to create invitation.", err)
	}

	inv := model.Invitation{
		ID:        uuid.New(),
		TeamID:    user.TeamID,
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: time.Now().Add(invitationTTL),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Invitation{}, apperr.New(apperr.Validation,
				"An invitation has already been sent to this email address.")
		}
		return model.Invitation{}, apperr.Wrap(apperr.Upstream, "Failed to create invitation.", err)
	}
	return inv, nil
}

// UpdateMemberRole changes a member's role. The member must belong to the
// caller's team; anything else is reported as not found.
func (s *Service) UpdateMemberRole(ctx context.Context, uid, memberID string, role model.Role) error {
	if !role.Valid() {
		return apperr.New(apperr.Validation, "Invalid role specified.")
	}

	user, err := s.caller(ctx, uid)
	if err != nil {
		return err
	}

	member, err := s.users.GetByID(ctx, memberID)
	if err != nil || member.TeamID != user.TeamID {
		return apperr.New(apperr.NotFound, "Member not found in your team.")
	}

	if err := s.users.UpdateRole(ctx, memberID, role); err != nil {
		return apperr.Wrap(apperr.Upstream, "Failed to update role.", err)
	}
	return nil
}

// RemoveMember removes an active member from the caller's team, or deletes
// a pending invitation when the id matches one instead.
func (s *Service) RemoveMember(ctx context.Context, uid, memberID string) error {
	user, err := s.caller(ctx, uid)
	if err != nil {
		return err
	}

	err = s.users.DeleteInTeam(ctx, memberID, user.TeamID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return apperr.Wrap(apperr.Upstream, "Failed to remove member.", err)
	}

	inviteID, parseErr := uuid.Parse(memberID)
	if parseErr == nil {
		err = s.invites.DeleteInTeam(ctx, inviteID, user.TeamID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return apperr.Wrap(apperr.Upstream, "Failed to remove invitation.", err)
		}
	}
	return apperr.New(apperr.NotFound, "Member or invitation not found.")
}
