package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/aerocall/server/internal/model"
)

// UserRepo defines the interface for user repository operations
type UserRepo interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, user model.User) error
	UpdateProfile(ctx context.Context, id, name string, p model.ProfileUpdate) error
	UpdateRole(ctx context.Context, id string, role model.Role) error
	ListByTeam(ctx context.Context, teamID string) ([]model.User, error)
	ExistsByEmailInTeam(ctx context.Context, teamID, email string) (bool, error)
	DeleteInTeam(ctx context.Context, id, teamID string) error
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, first_name, last_name, business_name, state,
	registered_country, role, team_id, assigned_phone_numbers,
	ringcentral_extension_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var extensionID sql.NullString
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.FirstName,
		&u.LastName,
		&u.BusinessName,
		&u.State,
		&u.RegisteredCountry,
		&u.Role,
		&u.TeamID,
		pq.Array(&u.AssignedPhoneNumbers),
		&extensionID,
		&u.CreatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	if extensionID.Valid && extensionID.String != "" {
		u.RingCentralExtensionID = &extensionID.String
	}
	return u, nil
}

// GetByID retrieves a user by subject id
func (r *userRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// Create inserts a new user record
func (r *userRepo) Create(ctx context.Context, user model.User) error {
	query := `
		INSERT INTO users (id, email, name, first_name, last_name, business_name,
			state, registered_country, role, team_id, assigned_phone_numbers,
			ringcentral_extension_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var extensionID sql.NullString
	if user.RingCentralExtensionID != nil {
		extensionID = sql.NullString{String: *user.RingCentralExtensionID, Valid: true}
	}
	numbers := user.AssignedPhoneNumbers
	if numbers == nil {
		numbers = []string{}
	}
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.FirstName, user.LastName,
		user.BusinessName, user.State, user.RegisteredCountry, user.Role,
		user.TeamID, pq.Array(numbers), extensionID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateProfile updates the profile fields and the derived display name
func (r *userRepo) UpdateProfile(ctx context.Context, id, name string, p model.ProfileUpdate) error {
	query := `
		UPDATE users
		SET name = $2, first_name = $3, last_name = $4, business_name = $5,
			state = $6, registered_country = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		id, name, p.FirstName, p.LastName, p.BusinessName, p.State, p.RegisteredCountry,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRole updates a user's role
func (r *userRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByTeam returns all users with the given team id
func (r *userRepo) ListByTeam(ctx context.Context, teamID string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE team_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("query team users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team users: %w", err)
	}
	return users, nil
}

// ExistsByEmailInTeam reports whether an active member with the email exists
// in the team
func (r *userRepo) ExistsByEmailInTeam(ctx context.Context, teamID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE team_id = $1 AND email = $2)`,
		teamID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check member email: %w", err)
	}
	return exists, nil
}

// DeleteInTeam removes a user only if it belongs to the given team
func (r *userRepo) DeleteInTeam(ctx context.Context, id, teamID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
