package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aerocall/server/internal/model"
)

// InvitationRepo defines the interface for invitation repository operations
type InvitationRepo interface {
	Create(ctx context.Context, inv model.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Invitation, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.Invitation, error)
	ExistsByEmailInTeam(ctx context.Context, teamID, email string) (bool, error)
	DeleteInTeam(ctx context.Context, id uuid.UUID, teamID string) error
}

type invitationRepo struct {
	db *sql.DB
}

// NewInvitationRepo creates a new InvitationRepo instance
func NewInvitationRepo(db *sql.DB) InvitationRepo {
	return &invitationRepo{db: db}
}

// Create inserts a new invitation. The (team_id, email) uniqueness constraint
// rejects the second writer under concurrent duplicate invites.
func (r *invitationRepo) Create(ctx context.Context, inv model.Invitation) error {
	query := `
		INSERT INTO invitations (id, team_id, email, role, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.TeamID, inv.Email, inv.Role, inv.Token, inv.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation by id
func (r *invitationRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Invitation, error) {
	query := `
		SELECT id, team_id, email, role, token, created_at, expires_at
		FROM invitations
		WHERE id = $1
	`
	var inv model.Invitation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token,
		&inv.CreatedAt, &inv.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Invitation{}, ErrNotFound
		}
		return model.Invitation{}, fmt.Errorf("query invitation: %w", err)
	}
	return inv, nil
}

// ListByTeam returns all pending invitations for the team
func (r *invitationRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Invitation, error) {
	query := `
		SELECT id, team_id, email, role, token, created_at, expires_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("query team invitations: %w", err)
	}
	defer rows.Close()

	var invitations []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		err := rows.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role,
			&inv.Token, &inv.CreatedAt, &inv.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

// ExistsByEmailInTeam reports whether a pending invitation for the email
// exists in the team
func (r *invitationRepo) ExistsByEmailInTeam(ctx context.Context, teamID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM invitations WHERE team_id = $1 AND email = $2)`,
		teamID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invitation email: %w", err)
	}
	return exists, nil
}

// DeleteInTeam removes an invitation only if it belongs to the given team
func (r *invitationRepo) DeleteInTeam(ctx context.Context, id uuid.UUID, teamID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
