// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface.
//
// The store wraps one shared database connection in a reader/writer guard:
// pure queries hold the shared slot concurrently, every mutation runs inside a
// transaction holding the exclusive slot. A code path that needs to write
// after a read must release the shared slot first; holding both deadlocks and
// is treated as a reviewable invariant, not something the guard detects.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/finbook/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite behind a single shared
// connection.
type Store struct {
	db *sql.DB

	// mu arbitrates access to db: RLock for reads, Lock inside WithTx.
	mu sync.RWMutex
}

// Open creates a Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func Open(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection is the unit of exclusivity; the guard serializes it.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Owner returns an accessor whose every statement is predicated on userID.
func (s *Store) Owner(userID string) storage.OwnerStore {
	return &ownerStore{s: s, ownerID: userID}
}
