package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// newEntryID generates a UUID v7 string for a journal entry. v7 ids sort by
// creation time, which keeps the journal naturally ordered.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// appendJournalTx records one change inside the transaction that made it.
func appendJournalTx(tx *sql.Tx, op string, resourceID int64, detail string) error {
	var d sql.NullString
	if detail != "" {
		d = sql.NullString{String: detail, Valid: true}
	}
	_, err := tx.Exec(
		"INSERT INTO journal (entry_id, op, resource_id, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		newEntryID(), op, resourceID, d, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("appending journal entry for %d: %w", resourceID, err)
	}
	return nil
}

// JournalFor returns the change journal entries recorded for a resource,
// oldest first. Entries survive the resource's deletion.
func (s *Store) JournalFor(resourceID int64) ([]types.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(
		"SELECT entry_id, op, resource_id, detail, created_at FROM journal WHERE resource_id = ? ORDER BY entry_id",
		resourceID)
	if err != nil {
		return nil, fmt.Errorf("fetching journal of %d: %w", resourceID, err)
	}
	defer rows.Close()

	var entries []types.JournalEntry
	for rows.Next() {
		var e types.JournalEntry
		var detail sql.NullString
		var createdAt string
		if err := rows.Scan(&e.EntryID, &e.Op, &e.ResourceID, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal created_at: %w", err)
		}
		entries = append(entries, e)
	}
	if entries == nil {
		entries = []types.JournalEntry{}
	}
	return entries, rows.Err()
}
