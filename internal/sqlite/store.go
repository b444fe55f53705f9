package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "resources.db"

// Store implements types.Store on a single SQLite database file.
// The database is the source of truth; Open reuses an existing file and
// bootstraps the schema only on first use.
type Store struct {
	mu     sync.RWMutex
	open   bool
	config types.Config
	db     *sql.DB
}

// NewStore creates a new SQLite store instance.
// The store is not open; call Open with a Config to initialize.
func NewStore() *Store {
	return &Store{}
}

// Open initializes the store with the given configuration.
// Creates DataDir if it does not exist and bootstraps the schema on a fresh
// database file. Returns ErrAlreadyOpen if already open.
func (s *Store) Open(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return types.ErrAlreadyOpen
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}

	fresh, err := isFresh(db)
	if err != nil {
		db.Close()
		return err
	}
	if fresh {
		if err := execAll(db, schemaDDL); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
		if err := execAll(db, indexDDL); err != nil {
			db.Close()
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	s.db = db
	s.config = config
	s.open = true
	return nil
}

// Close releases the SQLite connection. After Close, all operations return
// ErrStoreClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil // idempotent
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.open = false
	return nil
}

// isFresh reports whether the database file carries no schema yet.
func isFresh(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'resources'").Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspecting schema: %w", err)
	}
	return n == 0, nil
}

// execAll executes each DDL statement in order.
func execAll(db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeTx runs fn inside one transaction. Any error rolls the transaction
// back entirely; driver busy/locked failures surface as the retryable
// ErrConflict. The caller must hold s.mu for writing.
func (s *Store) writeTx(fn func(tx *sql.Tx) error) error {
	if !s.open {
		return types.ErrStoreClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return mapConflict(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return mapConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return mapConflict(err)
	}
	return nil
}

// mapConflict converts SQLite busy/locked failures into types.ErrConflict.
// All other errors pass through unchanged.
func mapConflict(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %v", types.ErrConflict, err)
		}
	}
	return err
}

// resourceExistsTx reports whether a resource row exists for id.
func resourceExistsTx(tx *sql.Tx, id int64) (bool, error) {
	var one int
	err := tx.QueryRow("SELECT 1 FROM resources WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking resource %d: %w", id, err)
	}
	return true, nil
}

// bumpRefsTx adjusts the back-reference count of id by delta, dropping the
// counter row when it reaches zero.
func bumpRefsTx(tx *sql.Tx, id int64, delta int64) error {
	_, err := tx.Exec(`
		INSERT INTO backrefs (id, refs) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET refs = refs + excluded.refs`,
		id, delta)
	if err != nil {
		return fmt.Errorf("updating backrefs for %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM backrefs WHERE id = ? AND refs <= 0", id); err != nil {
		return fmt.Errorf("pruning backrefs for %d: %w", id, err)
	}
	return nil
}

// refCountTx returns the live back-reference count of id.
func refCountTx(tx *sql.Tx, id int64) (int64, error) {
	var refs int64
	err := tx.QueryRow("SELECT refs FROM backrefs WHERE id = ?", id).Scan(&refs)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading backrefs for %d: %w", id, err)
	}
	return refs, nil
}
