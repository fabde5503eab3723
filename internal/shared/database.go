package shared

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDatabase is the path that opens a private in-memory database.
const MemoryDatabase = ":memory:"

const defaultBusyTimeoutMS = 5000

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
//
// Foreign keys are enforced and transactions begin with BEGIN IMMEDIATE, so write transactions take the database
// write lock up front and serialize against each other.
//
// In-memory databases are limited to a single connection: every pooled connection would otherwise see its own
// empty database.
func NewDatabase(path string) (*sql.DB, error) {
	return NewDatabaseWithTimeout(path, defaultBusyTimeoutMS)
}

// NewDatabaseWithTimeout is [NewDatabase] with an explicit busy timeout in milliseconds.
func NewDatabaseWithTimeout(path string, busyTimeoutMS int) (*sql.DB, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = defaultBusyTimeoutMS
	}

	db, err := sql.Open("sqlite3", dsn(path, busyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == MemoryDatabase {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// OpenConfigured opens the database described by [DatabaseConfig] and applies its pool settings.
func OpenConfigured(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := NewDatabaseWithTimeout(cfg.Path, cfg.BusyTimeoutMS)
	if err != nil {
		return nil, err
	}
	if cfg.Path != MemoryDatabase && cfg.MaxOpenConns > 0 {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	return db, nil
}

func dsn(path string, busyTimeoutMS int) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	params.Set("_busy_timeout", strconv.Itoa(busyTimeoutMS))

	if path == MemoryDatabase {
		return "file::memory:?" + params.Encode()
	}
	return "file:" + path + "?" + params.Encode()
}
