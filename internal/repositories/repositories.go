// package repositories provides persistence layer implementations for all model types.
//
// Every repository is bound to a [Querier], so the same code runs against a pooled *sql.DB or inside a transaction.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Alive returns the tombstone filter for a soft-deletable table, qualified by alias when one is given.
//
// Every read path that returns live rows builds its WHERE clause from this helper.
func Alive(alias string) string {
	if alias == "" {
		return "deleted_at IS NULL"
	}
	return alias + ".deleted_at IS NULL"
}

// Store groups the repositories bound to one [Querier].
type Store struct {
	Users       *UserRepository
	Lists       *ListRepository
	Items       *ListItemRepository
	Permissions *PermissionRepository
	Content     *ContentRepository
}

// NewStore binds every repository to q.
func NewStore(q Querier) *Store {
	return &Store{
		Users:       NewUserRepository(q),
		Lists:       NewListRepository(q),
		Items:       NewListItemRepository(q),
		Permissions: NewPermissionRepository(q),
		Content:     NewContentRepository(q),
	}
}

// WithTx runs fn against a [Store] bound to a new transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise, so every write fn made is undone on error.
func WithTx(ctx context.Context, db *sql.DB, fn func(*Store) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
