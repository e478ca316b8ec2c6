// Package repotest provides in-memory repository implementations for tests
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aerocall/server/internal/model"
	"github.com/aerocall/server/internal/repo"
)

// Users is an in-memory repo.UserRepo
type Users struct {
	mu    sync.Mutex
	users map[string]model.User
}

// NewUsers creates an empty in-memory user repo
func NewUsers() *Users {
	return &Users{users: make(map[string]model.User)}
}

// Seed inserts a user directly, assigning CreatedAt if unset
func (r *Users) Seed(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	r.users[u.ID] = u
}

func (r *Users) GetByID(_ context.Context, id string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *Users) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return repo.ErrDuplicate
	}
	for _, existing := range r.users {
		if existing.TeamID == u.TeamID && existing.Email != "" && existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *Users) UpdateProfile(_ context.Context, id, name string, p model.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Name = name
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.BusinessName = p.BusinessName
	u.State = p.State
	u.RegisteredCountry = p.RegisteredCountry
	r.users[id] = u
	return nil
}

func (r *Users) UpdateRole(_ context.Context, id string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	r.users[id] = u
	return nil
}

func (r *Users) ListByTeam(_ context.Context, teamID string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []model.User
	for _, u := range r.users {
		if u.TeamID == teamID {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *Users) ExistsByEmailInTeam(_ context.Context, teamID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TeamID == teamID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) DeleteInTeam(_ context.Context, id, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.TeamID != teamID {
		return repo.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// Invitations is an in-memory repo.InvitationRepo
type Invitations struct {
	mu      sync.Mutex
	invites map[uuid.UUID]model.Invitation
}

// NewInvitations creates an empty in-memory invitation repo
func NewInvitations() *Invitations {
	return &Invitations{invites: make(map[uuid.UUID]model.Invitation)}
}

func (r *Invitations) Create(_ context.Context, inv model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invites {
		if existing.TeamID == inv.TeamID && existing.Email == inv.Email {
			return repo.ErrDuplicate
		}
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	r.invites[inv.ID] = inv
	return nil
}

func (r *Invitations) GetByID(_ context.Context, id uuid.UUID) (model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return model.Invitation{}, repo.ErrNotFound
	}
	return inv, nil
}

func (r *Invitations) ListByTeam(_ context.Context, teamID string) ([]model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var invites []model.Invitation
	for _, inv := range r.invites {
		if inv.TeamID == teamID {
			invites = append(invites, inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool { return invites[i].CreatedAt.Before(invites[j].CreatedAt) })
	return invites, nil
}

func (r *Invitations) ExistsByEmailInTeam(_ context.Context, teamID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.TeamID == teamID && inv.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Invitations) DeleteInTeam(_ context.Context, id uuid.UUID, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok || inv.TeamID != teamID {
		return repo.ErrNotFound
	}
	delete(r.invites, id)
	return nil
}

// Sessions is an in-memory repo.SessionRepo
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

// NewSessions creates an empty in-memory session repo
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]model.Session)}
}

func (r *Sessions) Create(_ context.Context, s model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sessions[s.TokenHash] = s
	return nil
}

func (r *Sessions) FindActiveByTokenHash(_ context.Context, hash string) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[hash]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(time.Now()) {
		return model.Session{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *Sessions) RevokeByTokenHash(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[hash]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
		r.sessions[hash] = s
	}
	return nil
}
