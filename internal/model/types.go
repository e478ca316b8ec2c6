package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role within their team
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleAgent Role = "Agent"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User is a team member's profile record, keyed by the identity provider's
// subject id
type User struct {
	ID                     string
	Email                  string
	Name                   string
	FirstName              string
	LastName               string
	BusinessName           string
	State                  string
	RegisteredCountry      string
	Role                   Role
	TeamID                 string
	AssignedPhoneNumbers   []string
	RingCentralExtensionID *string
	CreatedAt              time.Time
}

// HasPhoneNumber reports whether the number is in the user's assigned set
func (u User) HasPhoneNumber(number string) bool {
	for _, n := range u.AssignedPhoneNumbers {
		if n == number {
			return true
		}
	}
	return false
}

// Invitation is a pending invite to join a team
type Invitation struct {
	ID        uuid.UUID
	TeamID    string
	Email     string
	Role      Role
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Session is a server-side record of an issued session artifact. Only a hash
// of the artifact is stored.
type Session struct {
	ID        uuid.UUID
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// MemberStatus distinguishes active members from pending invitations
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberPending MemberStatus = "pending"
)

// TeamMember is a row in the team roster view: either an active user or a
// pending invitation.
type TeamMember struct {
	ID     string
	Email  string
	Name   string
	Role   Role
	Status MemberStatus
}

// ProfileUpdate carries the mutable profile fields
type ProfileUpdate struct {
	FirstName         string
	LastName          string
	BusinessName      string
	State             string
	RegisteredCountry string
}
