package types

import (
	"encoding/json"
	"errors"
)

// Store is the single entry point to the resource engine. Callers open a
// backend, perform resource, attribute, and relation operations, and close
// when done. Every multi-row write executes as one atomic unit; no caller
// ever observes a partial state.
//
// Document policy: the resource document is nullable. A nil document is legal
// on CreateResource and ReplaceDocument and round-trips as nil on GetResource.
type Store interface {
	// Open connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist.
	// Returns ErrAlreadyOpen if called while already open.
	Open(config Config) error

	// Close releases backend resources. Idempotent: multiple calls succeed.
	// After Close, all operations return ErrStoreClosed.
	Close() error

	// CreateResource inserts a new resource. When id is zero a random
	// positive id is assigned. Returns ErrDuplicateID if id is already
	// present and ErrInvalidType if typ is empty.
	CreateResource(id int64, typ string, document json.RawMessage) (*Resource, error)

	// CreateResourceWithAttributes inserts a resource and all of its
	// attributes as one atomic unit. Any failure (duplicate id, dangling
	// reference, duplicate attribute) aborts the whole operation with no
	// partial rows visible.
	CreateResourceWithAttributes(id int64, typ string, document json.RawMessage, attrs []Attribute) (*Resource, error)

	// GetResource retrieves a resource by id.
	// Returns ErrNotFound if no resource exists with that id.
	GetResource(id int64) (*Resource, error)

	// ReplaceDocument replaces the resource document in place. The type tag
	// is never altered. Returns ErrNotFound if the resource is absent.
	ReplaceDocument(id int64, document json.RawMessage) error

	// DeleteResource removes the resource and its own attribute rows
	// atomically. Returns ErrReferentialIntegrity if any relation row or
	// another resource's reference attribute still mentions id; the resource
	// then remains fully intact.
	DeleteResource(id int64) error

	// ListByType returns every resource carrying the given type tag.
	// Order is unspecified.
	ListByType(typ string) ([]*Resource, error)

	// AddAttribute attaches a named typed fact to a resource. Returns
	// ErrNotFound if the resource is absent, ErrDanglingReference if a
	// reference value names a nonexistent resource, and ErrDuplicateAttribute
	// if the exact (id, name, value) triple already exists.
	AddAttribute(id int64, name string, value Value) error

	// RemoveAttribute deletes one attribute triple.
	// Returns ErrNotFound if the triple does not exist.
	RemoveAttribute(id int64, name string, value Value) error

	// Attributes returns the set of values stored under (id, kind, name).
	// The result is unordered and may be empty.
	Attributes(id int64, kind Kind, name string) ([]Value, error)

	// AttributeNames returns the set of attribute names a resource carries
	// in the given kind's table.
	AttributeNames(id int64, kind Kind) ([]string, error)

	// PutReference records a directed edge id -> referenceID. Both endpoints
	// must exist (ErrDanglingReference otherwise). Insert-or-replace: a
	// duplicate edge is a no-op.
	PutReference(id, referenceID int64) error

	// RemoveReference deletes an edge. Returns ErrNotFound if absent.
	RemoveReference(id, referenceID int64) error

	// ReferencesFor returns all outgoing edges of a resource.
	ReferencesFor(id int64) ([]Reference, error)

	// PutPosting records one ledger leg of a transaction against an account.
	// Both the transaction and the account must exist as resources
	// (ErrDanglingReference otherwise); transactions are resources like any
	// other. Insert-or-replace: at most one posting per (transaction,
	// account) pair; a repeated Put replaces the amount atomically.
	PutPosting(transactionID, accountID int64, amount Amount) error

	// RemovePosting deletes a posting. Returns ErrNotFound if absent.
	RemovePosting(transactionID, accountID int64) error

	// PostingsFor returns all postings of a transaction.
	PostingsFor(transactionID int64) ([]Posting, error)

	// SumForTransaction returns the arithmetic sum of all posting amounts
	// currently stored for the transaction. Pure aggregation; balance is not
	// enforced by the store.
	SumForTransaction(transactionID int64) (Amount, error)

	// PutGrant records the access level a user holds within a group.
	// Insert-or-replace: at most one grant per (group, user) pair.
	PutGrant(groupID, userID, access int64) error

	// RemoveGrant deletes a grant. Returns ErrNotFound if absent.
	RemoveGrant(groupID, userID int64) error

	// GrantsFor returns all grants of a group.
	GrantsFor(groupID int64) ([]Grant, error)

	// JournalFor returns the change journal entries recorded for a resource,
	// oldest first. Entries survive the resource's deletion.
	JournalFor(resourceID int64) ([]JournalEntry, error)

	// Dump writes one JSONL snapshot file per keyspace into dir.
	Dump(dir string) error

	// Load restores a snapshot previously written by Dump into an empty
	// store.
	Load(dir string) error
}

// Store lifecycle errors.
var (
	ErrStoreClosed   = errors.New("store is closed")
	ErrAlreadyOpen   = errors.New("store is already open")
	ErrStoreNotEmpty = errors.New("store is not empty")
)

// Operation errors. All are local to the offending operation; multi-row
// operations roll back entirely on any of them. Only ErrConflict is
// retryable without changing the input.
var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateID          = errors.New("duplicate resource id")
	ErrDuplicateAttribute   = errors.New("duplicate attribute")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrReferentialIntegrity = errors.New("resource is still referenced")
	ErrInvalidType          = errors.New("type tag must not be empty")
	ErrConflict             = errors.New("concurrent write conflict")
)
