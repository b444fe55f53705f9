package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// attributeTables lists the five typed attribute tables in schema order.
var attributeTables = []string{
	types.TableStringParameters,
	types.TableReferenceParameters,
	types.TableIntegerParameters,
	types.TableAmountParameters,
	types.TableDateParameters,
}

// kindTables maps each attribute kind to its table.
var kindTables = map[types.Kind]string{
	types.KindString:    types.TableStringParameters,
	types.KindReference: types.TableReferenceParameters,
	types.KindInteger:   types.TableIntegerParameters,
	types.KindAmount:    types.TableAmountParameters,
	types.KindDate:      types.TableDateParameters,
}

// tableForKind resolves the attribute table for a kind.
// Returns ErrInvalidKind for anything outside the closed kind set.
func tableForKind(kind types.Kind) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidKind, kind)
	}
	return table, nil
}

// bindValue returns the param_value column binding for a value: the text
// payload for string and date kinds, the integer payload otherwise.
// Date values are validated here so a malformed date never reaches a row.
func bindValue(v types.Value) (any, error) {
	switch v.Kind {
	case types.KindString:
		return v.Text, nil
	case types.KindDate:
		if _, err := types.ParseDate(v.Text); err != nil {
			return nil, err
		}
		return v.Text, nil
	case types.KindReference, types.KindInteger, types.KindAmount:
		return v.Int, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidKind, v.Kind)
	}
}

// AddAttribute attaches one named typed fact to a resource.
func (s *Store) AddAttribute(id int64, name string, value types.Value) error {
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
		return addAttributeTx(tx, id, name, value)
	})
}

// addAttributeTx inserts one attribute triple. The caller has already
// verified that the owning resource exists.
func addAttributeTx(tx *sql.Tx, id int64, name string, value types.Value) error {
	table, err := tableForKind(value.Kind)
	if err != nil {
		return err
	}
	bound, err := bindValue(value)
	if err != nil {
		return err
	}

	if value.Kind == types.KindReference {
		exists, err := resourceExistsTx(tx, value.Ref())
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: attribute %q names resource %d",
				types.ErrDanglingReference, name, value.Ref())
		}
	}

	var one int
	err = tx.QueryRow(
		"SELECT 1 FROM "+table+" WHERE id = ? AND param_name = ? AND param_value = ?",
		id, name, bound).Scan(&one)
	if err == nil {
		return fmt.Errorf("%w: (%d, %q)", types.ErrDuplicateAttribute, id, name)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking attribute (%d, %q): %w", id, name, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO "+table+" (id, param_name, param_value) VALUES (?, ?, ?)",
		id, name, bound); err != nil {
		return fmt.Errorf("inserting attribute (%d, %q): %w", id, name, err)
	}

	if value.Kind == types.KindReference {
		return bumpRefsTx(tx, value.Ref(), 1)
	}
	return nil
}

// RemoveAttribute deletes one attribute triple.
func (s *Store) RemoveAttribute(id int64, name string, value types.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		table, err := tableForKind(value.Kind)
		if err != nil {
			return err
		}
		bound, err := bindValue(value)
		if err != nil {
			return err
		}

		res, err := tx.Exec(
			"DELETE FROM "+table+" WHERE id = ? AND param_name = ? AND param_value = ?",
			id, name, bound)
		if err != nil {
			return fmt.Errorf("deleting attribute (%d, %q): %w", id, name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting attribute (%d, %q): %w", id, name, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}

		if value.Kind == types.KindReference {
			return bumpRefsTx(tx, value.Ref(), -1)
		}
		return nil
	})
}

// Attributes returns the set of values stored under (id, kind, name).
func (s *Store) Attributes(id int64, kind types.Kind, name string) ([]types.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT param_value FROM "+table+" WHERE id = ? AND param_name = ?", id, name)
	if err != nil {
		return nil, fmt.Errorf("fetching attributes (%d, %q): %w", id, name, err)
	}
	defer rows.Close()

	var values []types.Value
	for rows.Next() {
		v := types.Value{Kind: kind}
		switch kind {
		case types.KindString, types.KindDate:
			if err := rows.Scan(&v.Text); err != nil {
				return nil, fmt.Errorf("scanning attribute value: %w", err)
			}
		default:
			if err := rows.Scan(&v.Int); err != nil {
				return nil, fmt.Errorf("scanning attribute value: %w", err)
			}
		}
		values = append(values, v)
	}
	if values == nil {
		values = []types.Value{}
	}
	return values, rows.Err()
}

// AttributeNames returns the set of attribute names a resource carries in
// the given kind's table.
func (s *Store) AttributeNames(id int64, kind types.Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT DISTINCT param_name FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("fetching attribute names of %d: %w", id, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning attribute name: %w", err)
		}
		names = append(names, name)
	}
	if names == nil {
		names = []string{}
	}
	return names, rows.Err()
}
