// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// NewTestDB creates an in-memory SQLite database with migrations applied. It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// Fixture seeds rows with plain SQL so packages below the repositories can share it.
type Fixture struct {
	t  *testing.T
	DB *sql.DB
}

// NewFixture wraps db. Pass nil to get a fresh [NewTestDB].
func NewFixture(t *testing.T, db *sql.DB) *Fixture {
	t.Helper()
	if db == nil {
		db = NewTestDB(t)
	}
	return &Fixture{t: t, DB: db}
}

func (f *Fixture) exec(query string, args ...any) int64 {
	f.t.Helper()
	result, err := f.DB.Exec(query, args...)
	if err != nil {
		f.t.Fatalf("fixture exec failed: %v\nQuery: %s", err, query)
	}
	id, err := result.LastInsertId()
	if err != nil {
		f.t.Fatalf("fixture last insert id failed: %v", err)
	}
	return id
}

// User inserts a user and returns its id.
func (f *Fixture) User(id string) string {
	f.t.Helper()
	now := time.Now().UTC()
	f.exec(`INSERT INTO users (id, email, display_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, id+"@example.com", id, now, now)
	return id
}

// List inserts a custom list owned by owner.
func (f *Fixture) List(owner, name string) int64 {
	f.t.Helper()
	now := time.Now().UTC()
	return f.exec(`INSERT INTO lists (user_id, name, description, kind, created_at, updated_at) VALUES (?, ?, '', 'custom', ?, ?)`,
		owner, name, now, now)
}

// Share grants userID level on listID.
func (f *Fixture) Share(listID int64, userID, level string) {
	f.t.Helper()
	now := time.Now().UTC()
	f.exec(`INSERT INTO list_permissions (list_id, user_id, level, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		listID, userID, level, now, now)
}

// Collection inserts a collection.
func (f *Fixture) Collection(name string) int64 {
	f.t.Helper()
	return f.exec(`INSERT INTO collections (name, created_at) VALUES (?, ?)`, name, time.Now().UTC())
}

// Movie inserts a standalone movie owned by owner.
func (f *Fixture) Movie(owner, title string) int64 {
	f.t.Helper()
	now := time.Now().UTC()
	return f.exec(`INSERT INTO movies (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		owner, title, now, now)
}

// CollectionMovie inserts a movie owned by owner that belongs to collectionID.
func (f *Fixture) CollectionMovie(owner, title string, collectionID int64) int64 {
	f.t.Helper()
	now := time.Now().UTC()
	return f.exec(`INSERT INTO movies (user_id, title, collection_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		owner, title, collectionID, now, now)
}

// Series inserts a series owned by owner.
func (f *Fixture) Series(owner, title string) int64 {
	f.t.Helper()
	now := time.Now().UTC()
	return f.exec(`INSERT INTO series (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		owner, title, now, now)
}

// Episodes inserts n episodes of season 1 under seriesID and returns their ids.
func (f *Fixture) Episodes(owner string, seriesID int64, n int) []int64 {
	f.t.Helper()
	now := time.Now().UTC()
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, f.exec(
			`INSERT INTO episodes (user_id, series_id, season_number, episode_number, created_at, updated_at) VALUES (?, ?, 1, ?, ?, ?)`,
			owner, seriesID, i, now, now))
	}
	return ids
}

// Tombstone soft-deletes row id of table.
func (f *Fixture) Tombstone(table string, id int64) {
	f.t.Helper()
	if _, err := f.DB.Exec(`UPDATE `+table+` SET deleted_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		f.t.Fatalf("failed to tombstone %s %d: %v", table, id, err)
	}
}

// AddItem inserts a live list item with default metadata.
func (f *Fixture) AddItem(listID int64, itemType string, itemID int64) int64 {
	f.t.Helper()
	return f.AddItemWithMeta(listID, itemType, itemID, false, "")
}

// AddItemWithMeta inserts a live list item with watched state and notes.
func (f *Fixture) AddItemWithMeta(listID int64, itemType string, itemID int64, watched bool, notes string) int64 {
	f.t.Helper()
	now := time.Now().UTC()
	return f.exec(
		`INSERT INTO list_items (list_id, item_type, item_id, watched, notes, added_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		listID, itemType, itemID, watched, notes, now, now)
}

// LiveCount returns the number of live items in listID.
func (f *Fixture) LiveCount(listID int64) int {
	f.t.Helper()
	return f.count(`SELECT COUNT(*) FROM list_items WHERE list_id = ? AND deleted_at IS NULL`, listID)
}

// TombstoneCount returns the number of soft-deleted items in listID.
func (f *Fixture) TombstoneCount(listID int64) int {
	f.t.Helper()
	return f.count(`SELECT COUNT(*) FROM list_items WHERE list_id = ? AND deleted_at IS NOT NULL`, listID)
}

// TotalItems returns the number of list item rows in the database, live or not.
func (f *Fixture) TotalItems() int {
	f.t.Helper()
	return f.count(`SELECT COUNT(*) FROM list_items`)
}

// LiveCopies returns how many live rows exist for one (list, type, id) triple.
func (f *Fixture) LiveCopies(listID int64, itemType string, itemID int64) int {
	f.t.Helper()
	return f.count(`SELECT COUNT(*) FROM list_items WHERE list_id = ? AND item_type = ? AND item_id = ? AND deleted_at IS NULL`,
		listID, itemType, itemID)
}

// LiveMeta returns the watched state and notes of a live item. ok is false when the item is not live.
func (f *Fixture) LiveMeta(listID int64, itemType string, itemID int64) (watched bool, notes string, ok bool) {
	f.t.Helper()
	err := f.DB.QueryRow(
		`SELECT watched, notes FROM list_items WHERE list_id = ? AND item_type = ? AND item_id = ? AND deleted_at IS NULL`,
		listID, itemType, itemID).Scan(&watched, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", false
	}
	if err != nil {
		f.t.Fatalf("failed to read item meta: %v", err)
	}
	return watched, notes, true
}

func (f *Fixture) count(query string, args ...any) int {
	f.t.Helper()
	var n int
	if err := f.DB.QueryRow(query, args...).Scan(&n); err != nil {
		f.t.Fatalf("count failed: %v\nQuery: %s", err, query)
	}
	return n
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
