package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// UserRepository persists [models.User] identity subjects.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new [UserRepository] bound to q
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// Ensure inserts the user if it does not exist yet and refreshes email and display name otherwise.
func (r *UserRepository) Ensure(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO users (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE users.email END,
			display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE users.display_name END,
			updated_at = excluded.updated_at
	`

	if _, err := r.q.ExecContext(ctx, query, user.ID, user.Email, user.DisplayName, now, now); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND ` + Alive("")

	var (
		user      models.User
		deletedAt sql.NullTime
	)

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return &user, nil
}
