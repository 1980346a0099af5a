package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kivo/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository defines the interface for profile data access.
// Profiles are read-mostly: identity is established by the external auth
// provider and the storefront only consumes id and is_admin.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	FindByAuthID(ctx context.Context, authID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a new profile using parameterized queries
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, auth_id, email, full_name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.AuthID,
		profile.Email,
		profile.FullName,
		profile.IsAdmin,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// FindByID retrieves a profile by ID using parameterized queries
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, auth_id, email, full_name, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	return r.scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// FindByAuthID retrieves the profile linked to an external identity
func (r *profileRepository) FindByAuthID(ctx context.Context, authID string) (*domain.Profile, error) {
	query := `
		SELECT id, auth_id, email, full_name, is_admin, created_at, updated_at
		FROM profiles
		WHERE auth_id = $1
	`

	return r.scanProfile(r.db.QueryRowContext(ctx, query, authID))
}

// Update persists profile fields that can change after signup
func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET email = $1, full_name = $2, is_admin = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.Email,
		profile.FullName,
		profile.IsAdmin,
		profile.UpdatedAt,
		profile.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *profileRepository) scanProfile(row *sql.Row) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.AuthID,
		&profile.Email,
		&profile.FullName,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}
