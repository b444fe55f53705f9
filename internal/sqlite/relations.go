package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// All three relation tables use insert-or-replace semantics: a Put on an
// existing key replaces the payload atomically (a no-op for references,
// which carry none). Every endpoint of a relation row holds a back-reference
// on its resource, so a resource with any relation row cannot be deleted.

// endpointsExistTx verifies that every given id names an existing resource.
func endpointsExistTx(tx *sql.Tx, ids ...int64) error {
	for _, id := range ids {
		exists, err := resourceExistsTx(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: endpoint %d", types.ErrDanglingReference, id)
		}
	}
	return nil
}

// PutReference records a directed edge id -> referenceID.
func (s *Store) PutReference(id, referenceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		if err := endpointsExistTx(tx, id, referenceID); err != nil {
			return err
		}

		var one int
		err := tx.QueryRow(
			"SELECT 1 FROM resource_references WHERE id = ? AND reference_id = ?",
			id, referenceID).Scan(&one)
		if err == nil {
			return nil // edge already present
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking reference (%d, %d): %w", id, referenceID, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO resource_references (id, reference_id) VALUES (?, ?)",
			id, referenceID); err != nil {
			return fmt.Errorf("inserting reference (%d, %d): %w", id, referenceID, err)
		}
		if err := bumpRefsTx(tx, id, 1); err != nil {
			return err
		}
		return bumpRefsTx(tx, referenceID, 1)
	})
}

// RemoveReference deletes an edge.
func (s *Store) RemoveReference(id, referenceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"DELETE FROM resource_references WHERE id = ? AND reference_id = ?",
			id, referenceID)
		if err != nil {
			return fmt.Errorf("deleting reference (%d, %d): %w", id, referenceID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting reference (%d, %d): %w", id, referenceID, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		if err := bumpRefsTx(tx, id, -1); err != nil {
			return err
		}
		return bumpRefsTx(tx, referenceID, -1)
	})
}

// ReferencesFor returns all outgoing edges of a resource.
func (s *Store) ReferencesFor(id int64) ([]types.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(
		"SELECT id, reference_id FROM resource_references WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("fetching references of %d: %w", id, err)
	}
	defer rows.Close()

	var edges []types.Reference
	for rows.Next() {
		var e types.Reference
		if err := rows.Scan(&e.ID, &e.ReferenceID); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		edges = append(edges, e)
	}
	if edges == nil {
		edges = []types.Reference{}
	}
	return edges, rows.Err()
}

// PutPosting records one ledger leg of a transaction against an account.
func (s *Store) PutPosting(transactionID, accountID int64, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		if err := endpointsExistTx(tx, transactionID, accountID); err != nil {
			return err
		}

		var one int
		err := tx.QueryRow(
			"SELECT 1 FROM transaction_account_amount WHERE id = ? AND account = ?",
			transactionID, accountID).Scan(&one)
		if err == nil {
			if _, err := tx.Exec(
				"UPDATE transaction_account_amount SET amount = ? WHERE id = ? AND account = ?",
				int64(amount), transactionID, accountID); err != nil {
				return fmt.Errorf("replacing posting (%d, %d): %w", transactionID, accountID, err)
			}
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking posting (%d, %d): %w", transactionID, accountID, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO transaction_account_amount (id, account, amount) VALUES (?, ?, ?)",
			transactionID, accountID, int64(amount)); err != nil {
			return fmt.Errorf("inserting posting (%d, %d): %w", transactionID, accountID, err)
		}
		if err := bumpRefsTx(tx, transactionID, 1); err != nil {
			return err
		}
		return bumpRefsTx(tx, accountID, 1)
	})
}

// RemovePosting deletes a posting.
func (s *Store) RemovePosting(transactionID, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"DELETE FROM transaction_account_amount WHERE id = ? AND account = ?",
			transactionID, accountID)
		if err != nil {
			return fmt.Errorf("deleting posting (%d, %d): %w", transactionID, accountID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting posting (%d, %d): %w", transactionID, accountID, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		if err := bumpRefsTx(tx, transactionID, -1); err != nil {
			return err
		}
		return bumpRefsTx(tx, accountID, -1)
	})
}

// PostingsFor returns all postings of a transaction.
func (s *Store) PostingsFor(transactionID int64) ([]types.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(
		"SELECT id, account, amount FROM transaction_account_amount WHERE id = ?",
		transactionID)
	if err != nil {
		return nil, fmt.Errorf("fetching postings of %d: %w", transactionID, err)
	}
	defer rows.Close()

	var postings []types.Posting
	for rows.Next() {
		var p types.Posting
		var amount int64
		if err := rows.Scan(&p.TransactionID, &p.AccountID, &amount); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		p.Amount = types.Amount(amount)
		postings = append(postings, p)
	}
	if postings == nil {
		postings = []types.Posting{}
	}
	return postings, rows.Err()
}

// SumForTransaction returns the arithmetic sum of all posting amounts
// currently stored for the transaction.
func (s *Store) SumForTransaction(transactionID int64) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return 0, types.ErrStoreClosed
	}

	var sum int64
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM transaction_account_amount WHERE id = ?",
		transactionID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing postings of %d: %w", transactionID, err)
	}
	return types.Amount(sum), nil
}

// PutGrant records the access level a user holds within a group.
func (s *Store) PutGrant(groupID, userID, access int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		if err := endpointsExistTx(tx, groupID, userID); err != nil {
			return err
		}

		var one int
		err := tx.QueryRow(
			"SELECT 1 FROM group_user_access WHERE id = ? AND user_ = ?",
			groupID, userID).Scan(&one)
		if err == nil {
			if _, err := tx.Exec(
				"UPDATE group_user_access SET access = ? WHERE id = ? AND user_ = ?",
				access, groupID, userID); err != nil {
				return fmt.Errorf("replacing grant (%d, %d): %w", groupID, userID, err)
			}
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking grant (%d, %d): %w", groupID, userID, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO group_user_access (id, user_, access) VALUES (?, ?, ?)",
			groupID, userID, access); err != nil {
			return fmt.Errorf("inserting grant (%d, %d): %w", groupID, userID, err)
		}
		if err := bumpRefsTx(tx, groupID, 1); err != nil {
			return err
		}
		return bumpRefsTx(tx, userID, 1)
	})
}

// RemoveGrant deletes a grant.
func (s *Store) RemoveGrant(groupID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"DELETE FROM group_user_access WHERE id = ? AND user_ = ?",
			groupID, userID)
		if err != nil {
			return fmt.Errorf("deleting grant (%d, %d): %w", groupID, userID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting grant (%d, %d): %w", groupID, userID, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		if err := bumpRefsTx(tx, groupID, -1); err != nil {
			return err
		}
		return bumpRefsTx(tx, userID, -1)
	})
}

// GrantsFor returns all grants of a group.
func (s *Store) GrantsFor(groupID int64) ([]types.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(
		"SELECT id, user_, access FROM group_user_access WHERE id = ?", groupID)
	if err != nil {
		return nil, fmt.Errorf("fetching grants of %d: %w", groupID, err)
	}
	defer rows.Close()

	var grants []types.Grant
	for rows.Next() {
		var g types.Grant
		if err := rows.Scan(&g.GroupID, &g.UserID, &g.Access); err != nil {
			return nil, fmt.Errorf("scanning grant: %w", err)
		}
		grants = append(grants, g)
	}
	if grants == nil {
		grants = []types.Grant{}
	}
	return grants, rows.Err()
}
