// Package sqlite provides the public API for the SQLite store backend.
// This package exposes the factory function for creating SQLite stores
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/resourcestore/internal/sqlite"
	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// NewStore creates a new SQLite store instance.
// The store is not open; call Open with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".resourcestore",
//	})
//	defer store.Close()
func NewStore() types.Store {
	return sqlite.NewStore()
}
