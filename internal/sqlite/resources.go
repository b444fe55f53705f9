package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// CreateResource inserts a new resource with no attributes.
func (s *Store) CreateResource(id int64, typ string, document json.RawMessage) (*types.Resource, error) {
	return s.CreateResourceWithAttributes(id, typ, document, nil)
}

// CreateResourceWithAttributes inserts a resource and all of its attributes
// as one atomic unit. When id is zero a random positive id is assigned.
// Any failure leaves no trace of the resource or any of its attributes.
func (s *Store) CreateResourceWithAttributes(id int64, typ string, document json.RawMessage, attrs []types.Attribute) (*types.Resource, error) {
	if typ == "" {
		return nil, types.ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := &types.Resource{ID: id, Type: typ, Document: document}
	err := s.writeTx(func(tx *sql.Tx) error {
		if r.ID == 0 {
			assigned, err := assignIDTx(tx)
			if err != nil {
				return err
			}
			r.ID = assigned
		} else {
			exists, err := resourceExistsTx(tx, r.ID)
			if err != nil {
				return err
			}
			if exists {
				return types.ErrDuplicateID
			}
		}

		var doc sql.NullString
		if document != nil {
			doc = sql.NullString{String: string(document), Valid: true}
		}
		if _, err := tx.Exec(
			"INSERT INTO resources (id, type, resource) VALUES (?, ?, ?)",
			r.ID, typ, doc); err != nil {
			return fmt.Errorf("inserting resource %d: %w", r.ID, err)
		}

		for _, attr := range attrs {
			if err := addAttributeTx(tx, r.ID, attr.Name, attr.Value); err != nil {
				return err
			}
		}

		return appendJournalTx(tx, types.JournalOpCreate, r.ID, typ)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// assignIDTx picks a random positive id not yet present in the resource
// table. Collisions in a 63-bit space are vanishingly rare; the loop is a
// correctness backstop.
func assignIDTx(tx *sql.Tx) (int64, error) {
	for {
		id := rand.Int64()
		if id == 0 {
			continue
		}
		exists, err := resourceExistsTx(tx, id)
		if err != nil {
			return 0, err
		}
		if !exists {
			return id, nil
		}
	}
}

// GetResource retrieves a resource by id.
func (s *Store) GetResource(id int64) (*types.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	var r types.Resource
	var doc sql.NullString
	err := s.db.QueryRow(
		"SELECT id, type, resource FROM resources WHERE id = ?", id).
		Scan(&r.ID, &r.Type, &doc)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning resource %d: %w", id, err)
	}
	if doc.Valid {
		r.Document = json.RawMessage(doc.String)
	}
	return &r, nil
}

// ReplaceDocument replaces the resource document in place, leaving the type
// tag untouched.
func (s *Store) ReplaceDocument(id int64, document json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		exists, err := resourceExistsTx(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrNotFound
		}

		var doc sql.NullString
		if document != nil {
			doc = sql.NullString{String: string(document), Valid: true}
		}
		if _, err := tx.Exec(
			"UPDATE resources SET resource = ? WHERE id = ?", doc, id); err != nil {
			return fmt.Errorf("replacing document of %d: %w", id, err)
		}
		return appendJournalTx(tx, types.JournalOpReplace, id, "")
	})
}

// DeleteResource removes the resource and its own attribute rows atomically.
// Cascading never extends past the resource's own attributes: relation rows
// and other resources' reference attributes block the delete instead.
func (s *Store) DeleteResource(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		exists, err := resourceExistsTx(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrNotFound
		}

		refs, err := refCountTx(tx, id)
		if err != nil {
			return err
		}
		// Holds from the resource's own reference attributes cascade away
		// with the delete; only external references block it.
		selfHolds, err := selfReferenceCountTx(tx, id)
		if err != nil {
			return err
		}
		if refs-selfHolds > 0 {
			return fmt.Errorf("%w: resource %d has %d live references",
				types.ErrReferentialIntegrity, id, refs-selfHolds)
		}

		// The resource's own reference attributes are about to cascade away;
		// release their holds on the targets first.
		if err := releaseOwnReferencesTx(tx, id); err != nil {
			return err
		}

		for _, table := range attributeTables {
			if _, err := tx.Exec(
				"DELETE FROM "+table+" WHERE id = ?", id); err != nil {
				return fmt.Errorf("deleting %s rows of %d: %w", table, id, err)
			}
		}
		if _, err := tx.Exec("DELETE FROM resources WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting resource %d: %w", id, err)
		}
		return appendJournalTx(tx, types.JournalOpDelete, id, "")
	})
}

// selfReferenceCountTx counts the resource's own reference attributes that
// name the resource itself.
func selfReferenceCountTx(tx *sql.Tx, id int64) (int64, error) {
	var n int64
	err := tx.QueryRow(
		"SELECT COUNT(*) FROM reference_parameters WHERE id = ? AND param_value = ?",
		id, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting self references of %d: %w", id, err)
	}
	return n, nil
}

// releaseOwnReferencesTx decrements the back-reference count of every target
// named by the resource's own reference attributes.
func releaseOwnReferencesTx(tx *sql.Tx, id int64) error {
	rows, err := tx.Query(
		"SELECT param_value, COUNT(*) FROM reference_parameters WHERE id = ? GROUP BY param_value", id)
	if err != nil {
		return fmt.Errorf("loading reference attributes of %d: %w", id, err)
	}
	defer rows.Close()

	type hold struct {
		target int64
		n      int64
	}
	var holds []hold
	for rows.Next() {
		var h hold
		if err := rows.Scan(&h.target, &h.n); err != nil {
			return fmt.Errorf("scanning reference attribute of %d: %w", id, err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, h := range holds {
		if err := bumpRefsTx(tx, h.target, -h.n); err != nil {
			return err
		}
	}
	return nil
}

// ListByType returns every resource carrying the given type tag.
func (s *Store) ListByType(typ string) ([]*types.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(
		"SELECT id, type, resource FROM resources WHERE type = ?", typ)
	if err != nil {
		return nil, fmt.Errorf("fetching resources of type %q: %w", typ, err)
	}
	defer rows.Close()

	var results []*types.Resource
	for rows.Next() {
		var r types.Resource
		var doc sql.NullString
		if err := rows.Scan(&r.ID, &r.Type, &doc); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		if doc.Valid {
			r.Document = json.RawMessage(doc.String)
		}
		results = append(results, &r)
	}
	if results == nil {
		results = []*types.Resource{}
	}
	return results, rows.Err()
}
