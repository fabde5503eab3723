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

const listColumns = "l.id, l.user_id, l.name, l.description, l.kind, l.created_at, l.updated_at, l.deleted_at"

// ListRepository persists custom [models.List] rows. The personal list never reaches this layer.
type ListRepository struct {
	q Querier
}

// NewListRepository creates a new [ListRepository] bound to q
func NewListRepository(q Querier) *ListRepository {
	return &ListRepository{q: q}
}

// Create inserts a new custom list. A live list with the same owner and name yields [shared.ErrConflict].
func (r *ListRepository) Create(ctx context.Context, list *models.List) error {
	if list.Kind == "" {
		list.Kind = models.ListKindCustom
	}
	if err := list.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO lists (user_id, name, description, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.q.ExecContext(ctx, query, list.UserID, list.Name, list.Description, string(list.Kind), now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: list %q already exists", shared.ErrConflict, list.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read list id: %w", err)
	}

	list.ID = id
	list.CreatedAt = now
	list.UpdatedAt = now
	return nil
}

// Get retrieves a list by ID, excluding soft-deleted lists
func (r *ListRepository) Get(ctx context.Context, id int64) (*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists l WHERE l.id = ? AND ` + Alive("l")

	list, err := scanList(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: list %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query list: %w", err)
	}
	return list, nil
}

// Update saves the name and description of a live list.
func (r *ListRepository) Update(ctx context.Context, list *models.List) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE lists
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND ` + Alive("")

	result, err := r.q.ExecContext(ctx, query, list.Name, list.Description, now, list.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: list %q already exists", shared.ErrConflict, list.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: list %d", shared.ErrNotFound, list.ID)
	}

	list.UpdatedAt = now
	return nil
}

// Delete tombstones a list together with its live items and shares.
func (r *ListRepository) Delete(ctx context.Context, id int64) error {
	now := time.Now().UTC()

	result, err := r.q.ExecContext(ctx,
		`UPDATE lists SET deleted_at = ?, updated_at = ? WHERE id = ? AND `+Alive(""), now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: list %d", shared.ErrNotFound, id)
	}

	if _, err := r.q.ExecContext(ctx,
		`UPDATE list_items SET deleted_at = ?, updated_at = ? WHERE list_id = ? AND `+Alive(""), now, now, id); err != nil {
		return fmt.Errorf("failed to delete list items: %w", err)
	}

	if _, err := r.q.ExecContext(ctx,
		`UPDATE list_permissions SET deleted_at = ?, updated_at = ? WHERE list_id = ? AND `+Alive(""), now, now, id); err != nil {
		return fmt.Errorf("failed to delete list shares: %w", err)
	}

	return nil
}

// Visible returns the live lists userID owns or holds a live share on, ordered by id.
func (r *ListRepository) Visible(ctx context.Context, userID string) ([]*models.List, error) {
	query := `
		SELECT ` + listColumns + `
		FROM lists l
		WHERE ` + Alive("l") + ` AND (
			l.user_id = ?
			OR EXISTS (
				SELECT 1 FROM list_permissions p
				WHERE p.list_id = l.id AND p.user_id = ? AND ` + Alive("p") + `
			)
		)
		ORDER BY l.id ASC
	`

	rows, err := r.q.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanList scans a row selected with listColumns into a [models.List]
func scanList(row scanner) (*models.List, error) {
	var (
		list      models.List
		kind      string
		deletedAt sql.NullTime
	)

	err := row.Scan(&list.ID, &list.UserID, &list.Name, &list.Description, &kind,
		&list.CreatedAt, &list.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	list.Kind = models.ListKind(kind)
	if deletedAt.Valid {
		list.DeletedAt = &deletedAt.Time
	}
	return &list, nil
}
