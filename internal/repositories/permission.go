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

// PermissionRepository persists [models.ListPermission] shares.
type PermissionRepository struct {
	q Querier
}

// NewPermissionRepository creates a new [PermissionRepository] bound to q
func NewPermissionRepository(q Querier) *PermissionRepository {
	return &PermissionRepository{q: q}
}

// Level returns the live share level of userID on a list. ok is false when no live share exists.
func (r *PermissionRepository) Level(ctx context.Context, listID int64, userID string) (level models.PermissionLevel, ok bool, err error) {
	query := `SELECT level FROM list_permissions WHERE list_id = ? AND user_id = ? AND ` + Alive("")

	var raw string
	err = r.q.QueryRowContext(ctx, query, listID, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query permission: %w", err)
	}
	return models.PermissionLevel(raw), true, nil
}

// Grant creates or replaces the live share of perm.UserID on perm.ListID.
//
// A changed level tombstones the previous share row and inserts a new one so history is retained.
func (r *PermissionRepository) Grant(ctx context.Context, perm *models.ListPermission) error {
	if err := perm.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	current, ok, err := r.Level(ctx, perm.ListID, perm.UserID)
	if err != nil {
		return err
	}
	if ok && current == perm.Level {
		return r.load(ctx, perm)
	}
	if ok {
		if _, err := r.q.ExecContext(ctx,
			`UPDATE list_permissions SET deleted_at = ?, updated_at = ? WHERE list_id = ? AND user_id = ? AND `+Alive(""),
			now, now, perm.ListID, perm.UserID); err != nil {
			return fmt.Errorf("failed to replace permission: %w", err)
		}
	}

	query := `
		INSERT INTO list_permissions (list_id, user_id, level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query, perm.ListID, perm.UserID, string(perm.Level), now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: share for %s already exists", shared.ErrConflict, perm.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert permission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read permission id: %w", err)
	}

	perm.ID = id
	perm.CreatedAt = now
	perm.UpdatedAt = now
	return nil
}

// Revoke tombstones the live share of userID on a list.
func (r *PermissionRepository) Revoke(ctx context.Context, listID int64, userID string) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`UPDATE list_permissions SET deleted_at = ?, updated_at = ? WHERE list_id = ? AND user_id = ? AND `+Alive(""),
		now, now, listID, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no share for %s on list %d", shared.ErrNotFound, userID, listID)
	}
	return nil
}

// ForList returns the live shares of a list.
func (r *PermissionRepository) ForList(ctx context.Context, listID int64) ([]*models.ListPermission, error) {
	query := `
		SELECT id, list_id, user_id, level, created_at, updated_at
		FROM list_permissions
		WHERE list_id = ? AND ` + Alive("") + `
		ORDER BY id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	var perms []*models.ListPermission
	for rows.Next() {
		var (
			perm  models.ListPermission
			level string
		)
		if err := rows.Scan(&perm.ID, &perm.ListID, &perm.UserID, &level, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perm.Level = models.PermissionLevel(level)
		perms = append(perms, &perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return perms, nil
}

func (r *PermissionRepository) load(ctx context.Context, perm *models.ListPermission) error {
	query := `
		SELECT id, created_at, updated_at FROM list_permissions
		WHERE list_id = ? AND user_id = ? AND ` + Alive("")

	if err := r.q.QueryRowContext(ctx, query, perm.ListID, perm.UserID).Scan(&perm.ID, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
		return fmt.Errorf("failed to load permission: %w", err)
	}
	return nil
}
