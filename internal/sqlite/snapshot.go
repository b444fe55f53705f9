// Snapshot export and import. Dump writes one JSONL file per keyspace using
// the atomic temp-file, fsync, rename pattern; Load restores a snapshot into
// an empty store and rebuilds the back-reference counters from the loaded
// rows.

package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/resourcestore/pkg/types"
)

// textParamRecord is the snapshot row for string and date attribute tables.
type textParamRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"param_name"`
	Value string `json:"param_value"`
}

// intParamRecord is the snapshot row for reference, integer, and amount
// attribute tables.
type intParamRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"param_name"`
	Value int64  `json:"param_value"`
}

// textParamTables marks the attribute tables whose param_value column is text.
var textParamTables = map[string]bool{
	types.TableStringParameters: true,
	types.TableDateParameters:   true,
}

// snapshotFile returns the JSONL path of a keyspace inside dir.
func snapshotFile(dir, table string) string {
	return filepath.Join(dir, table+".jsonl")
}

// Dump writes one JSONL snapshot file per keyspace into dir.
func (s *Store) Dump(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, table := range types.StandardTableNames {
		records, err := s.dumpTable(table)
		if err != nil {
			return fmt.Errorf("dumping %s: %w", table, err)
		}
		if err := writeJSONLAtomic(snapshotFile(dir, table), records); err != nil {
			return fmt.Errorf("writing %s snapshot: %w", table, err)
		}
	}
	return nil
}

// dumpTable reads every row of one keyspace as a JSON record.
func (s *Store) dumpTable(table string) ([]json.RawMessage, error) {
	switch table {
	case types.TableResources:
		return s.dumpResources()
	case types.TableReferences:
		return s.dumpReferences()
	case types.TablePostings:
		return s.dumpPostings()
	case types.TableGrants:
		return s.dumpGrants()
	case types.TableJournal:
		return s.dumpJournal()
	default:
		return s.dumpParameters(table)
	}
}

func marshalRecords[T any](items []T) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for _, item := range items {
		rec, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) dumpResources() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT id, type, resource FROM resources ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []types.Resource
	for rows.Next() {
		var r types.Resource
		var doc *string
		if err := rows.Scan(&r.ID, &r.Type, &doc); err != nil {
			return nil, err
		}
		if doc != nil {
			r.Document = json.RawMessage(*doc)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(resources)
}

func (s *Store) dumpParameters(table string) ([]json.RawMessage, error) {
	rows, err := s.db.Query(
		"SELECT id, param_name, param_value FROM " + table + " ORDER BY id, param_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if textParamTables[table] {
		var recs []textParamRecord
		for rows.Next() {
			var r textParamRecord
			if err := rows.Scan(&r.ID, &r.Name, &r.Value); err != nil {
				return nil, err
			}
			recs = append(recs, r)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return marshalRecords(recs)
	}

	var recs []intParamRecord
	for rows.Next() {
		var r intParamRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Value); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(recs)
}

func (s *Store) dumpReferences() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT id, reference_id FROM resource_references ORDER BY id, reference_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []types.Reference
	for rows.Next() {
		var e types.Reference
		if err := rows.Scan(&e.ID, &e.ReferenceID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(edges)
}

func (s *Store) dumpPostings() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT id, account, amount FROM transaction_account_amount ORDER BY id, account")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []types.Posting
	for rows.Next() {
		var p types.Posting
		var amount int64
		if err := rows.Scan(&p.TransactionID, &p.AccountID, &amount); err != nil {
			return nil, err
		}
		p.Amount = types.Amount(amount)
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(postings)
}

func (s *Store) dumpGrants() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT id, user_, access FROM group_user_access ORDER BY id, user_")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []types.Grant
	for rows.Next() {
		var g types.Grant
		if err := rows.Scan(&g.GroupID, &g.UserID, &g.Access); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(grants)
}

func (s *Store) dumpJournal() ([]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT entry_id, op, resource_id, detail, created_at FROM journal ORDER BY entry_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.JournalEntry
	for rows.Next() {
		var e types.JournalEntry
		var detail *string
		var createdAt string
		if err := rows.Scan(&e.EntryID, &e.Op, &e.ResourceID, &detail, &createdAt); err != nil {
			return nil, err
		}
		if detail != nil {
			e.Detail = *detail
		}
		e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marshalRecords(entries)
}

// Load restores a snapshot previously written by Dump. The store must be
// empty; a missing keyspace file loads as an empty keyspace. Back-reference
// counters are rebuilt from the loaded rows.
func (s *Store) Load(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeTx(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow("SELECT COUNT(*) FROM resources").Scan(&n); err != nil {
			return fmt.Errorf("inspecting store: %w", err)
		}
		if n > 0 {
			return types.ErrStoreNotEmpty
		}

		for _, table := range types.StandardTableNames {
			records, err := readJSONL(snapshotFile(dir, table))
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("reading %s snapshot: %w", table, err)
			}
			if err := loadTable(tx, table, records); err != nil {
				return fmt.Errorf("loading %s: %w", table, err)
			}
		}
		return rebuildBackrefsTx(tx)
	})
}

// loadTable inserts snapshot records into one keyspace.
func loadTable(tx *sql.Tx, table string, records []json.RawMessage) error {
	for _, rec := range records {
		switch table {
		case types.TableResources:
			var r types.Resource
			if err := json.Unmarshal(rec, &r); err != nil {
				return err
			}
			var doc any
			if r.Document != nil {
				doc = string(r.Document)
			}
			if _, err := tx.Exec(
				"INSERT INTO resources (id, type, resource) VALUES (?, ?, ?)",
				r.ID, r.Type, doc); err != nil {
				return err
			}
		case types.TableReferences:
			var e types.Reference
			if err := json.Unmarshal(rec, &e); err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO resource_references (id, reference_id) VALUES (?, ?)",
				e.ID, e.ReferenceID); err != nil {
				return err
			}
		case types.TablePostings:
			var p types.Posting
			if err := json.Unmarshal(rec, &p); err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO transaction_account_amount (id, account, amount) VALUES (?, ?, ?)",
				p.TransactionID, p.AccountID, int64(p.Amount)); err != nil {
				return err
			}
		case types.TableGrants:
			var g types.Grant
			if err := json.Unmarshal(rec, &g); err != nil {
				return err
			}
			if _, err := tx.Exec(
				"INSERT INTO group_user_access (id, user_, access) VALUES (?, ?, ?)",
				g.GroupID, g.UserID, g.Access); err != nil {
				return err
			}
		case types.TableJournal:
			var e types.JournalEntry
			if err := json.Unmarshal(rec, &e); err != nil {
				return err
			}
			var detail any
			if e.Detail != "" {
				detail = e.Detail
			}
			if _, err := tx.Exec(
				"INSERT INTO journal (entry_id, op, resource_id, detail, created_at) VALUES (?, ?, ?, ?, ?)",
				e.EntryID, e.Op, e.ResourceID, detail,
				e.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
				return err
			}
		default:
			if err := loadParameter(tx, table, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadParameter inserts one attribute snapshot record.
func loadParameter(tx *sql.Tx, table string, rec json.RawMessage) error {
	var id int64
	var name string
	var value any
	if textParamTables[table] {
		var r textParamRecord
		if err := json.Unmarshal(rec, &r); err != nil {
			return err
		}
		id, name, value = r.ID, r.Name, r.Value
	} else {
		var r intParamRecord
		if err := json.Unmarshal(rec, &r); err != nil {
			return err
		}
		id, name, value = r.ID, r.Name, r.Value
	}
	_, err := tx.Exec(
		"INSERT INTO "+table+" (id, param_name, param_value) VALUES (?, ?, ?)",
		id, name, value)
	return err
}

// rebuildBackrefsTx recomputes every back-reference counter from the
// referencing rows currently in the store.
func rebuildBackrefsTx(tx *sql.Tx) error {
	if _, err := tx.Exec("DELETE FROM backrefs"); err != nil {
		return fmt.Errorf("clearing backrefs: %w", err)
	}
	_, err := tx.Exec(`
		INSERT INTO backrefs (id, refs)
		SELECT id, SUM(n) FROM (
			SELECT param_value AS id, COUNT(*) AS n FROM reference_parameters GROUP BY param_value
			UNION ALL SELECT id, COUNT(*) FROM resource_references GROUP BY id
			UNION ALL SELECT reference_id, COUNT(*) FROM resource_references GROUP BY reference_id
			UNION ALL SELECT id, COUNT(*) FROM transaction_account_amount GROUP BY id
			UNION ALL SELECT account, COUNT(*) FROM transaction_account_amount GROUP BY account
			UNION ALL SELECT id, COUNT(*) FROM group_user_access GROUP BY id
			UNION ALL SELECT user_, COUNT(*) FROM group_user_access GROUP BY user_
		) GROUP BY id`)
	if err != nil {
		return fmt.Errorf("rebuilding backrefs: %w", err)
	}
	return nil
}

// readJSONL reads a JSONL file and returns each non-empty line as a raw JSON
// record.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, fmt.Errorf("malformed record in %s", path)
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONLAtomic writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONLAtomic(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
