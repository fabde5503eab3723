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

const itemColumns = "id, list_id, item_type, item_id, watched, notes, added_at, updated_at, deleted_at"

// ListItemRepository persists [models.ListItem] membership rows.
//
// At most one live row exists per (list_id, item_type, item_id); the partial unique index idx_list_items_live
// enforces it and [ListItemRepository.Insert] reports a collision instead of failing.
type ListItemRepository struct {
	q Querier
}

// NewListItemRepository creates a new [ListItemRepository] bound to q
func NewListItemRepository(q Querier) *ListItemRepository {
	return &ListItemRepository{q: q}
}

// Live returns every live item of a list in insertion order. One query regardless of list size.
func (r *ListItemRepository) Live(ctx context.Context, listID int64) ([]*models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE list_id = ? AND ` + Alive("") + ` ORDER BY id ASC`

	rows, err := r.q.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer rows.Close()

	var items []*models.ListItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Get retrieves the live row for ref in a list.
func (r *ListItemRepository) Get(ctx context.Context, listID int64, ref models.ConcreteRef) (*models.ListItem, error) {
	query := `SELECT ` + itemColumns + ` FROM list_items WHERE list_id = ? AND item_type = ? AND item_id = ? AND ` + Alive("")

	item, err := scanItem(r.q.QueryRowContext(ctx, query, listID, string(ref.Type), ref.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in list %d", shared.ErrNotFound, ref, listID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query list item: %w", err)
	}
	return item, nil
}

// Insert adds a new live row. It returns false without error when a live row for the same triple already exists.
//
// Tombstoned rows are never resurrected: a fresh row is always inserted.
func (r *ListItemRepository) Insert(ctx context.Context, item *models.ListItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO list_items (list_id, item_type, item_id, watched, notes, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (list_id, item_type, item_id) WHERE deleted_at IS NULL DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query, item.ListID, string(item.ItemType), item.ItemID, item.Watched, item.Notes, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert list item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to read list item id: %w", err)
	}

	item.ID = id
	item.AddedAt = now
	item.UpdatedAt = now
	item.DeletedAt = nil
	return true, nil
}

// Update saves watched state and notes of a live row.
func (r *ListItemRepository) Update(ctx context.Context, item *models.ListItem) error {
	now := time.Now().UTC()
	query := `UPDATE list_items SET watched = ?, notes = ?, updated_at = ? WHERE id = ? AND ` + Alive("")

	result, err := r.q.ExecContext(ctx, query, item.Watched, item.Notes, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update list item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: list item %d", shared.ErrNotFound, item.ID)
	}

	item.UpdatedAt = now
	return nil
}

// Tombstone soft-deletes the live rows of refs in a list and returns how many rows it touched.
//
// Refs without a live row are ignored. Issues one statement per item type.
func (r *ListItemRepository) Tombstone(ctx context.Context, listID int64, refs []models.ConcreteRef) (int, error) {
	byType := make(map[models.ItemType][]int64)
	var order []models.ItemType
	for _, ref := range refs {
		if _, ok := byType[ref.Type]; !ok {
			order = append(order, ref.Type)
		}
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	now := time.Now().UTC()
	total := 0

	for _, itemType := range order {
		ids := uniqueIDs(byType[itemType])
		query := `
			UPDATE list_items
			SET deleted_at = ?, updated_at = ?
			WHERE list_id = ? AND item_type = ? AND item_id IN (` + placeholders(len(ids)) + `) AND ` + Alive("")

		args := append([]any{now, now, listID, string(itemType)}, int64Args(ids)...)
		result, err := r.q.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("failed to tombstone %s items: %w", itemType, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get affected rows: %w", err)
		}
		total += int(rows)
	}

	return total, nil
}

// Remove tombstones the live row for ref, or returns [shared.ErrNotFound] when there is none.
func (r *ListItemRepository) Remove(ctx context.Context, listID int64, ref models.ConcreteRef) error {
	n, err := r.Tombstone(ctx, listID, []models.ConcreteRef{ref})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s in list %d", shared.ErrNotFound, ref, listID)
	}
	return nil
}

// scanItem scans a row selected with itemColumns into a [models.ListItem]
func scanItem(row scanner) (*models.ListItem, error) {
	var (
		item      models.ListItem
		itemType  string
		deletedAt sql.NullTime
	)

	err := row.Scan(&item.ID, &item.ListID, &itemType, &item.ItemID, &item.Watched, &item.Notes,
		&item.AddedAt, &item.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	item.ItemType = models.ItemType(itemType)
	if deletedAt.Valid {
		item.DeletedAt = &deletedAt.Time
	}
	return &item, nil
}
