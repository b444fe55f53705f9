package types

// Reference is a directed edge between two resources, independent of named
// attributes. At most one edge exists per ordered pair.
type Reference struct {
	ID          int64 `json:"id"`
	ReferenceID int64 `json:"reference_id"`
}

// Posting is one ledger leg of a transaction against an account. At most one
// posting exists per (transaction, account) pair. A balanced transaction
// (postings summing to zero) is a business-level convention; the store
// enforces only uniqueness and referential validity.
type Posting struct {
	TransactionID int64  `json:"transaction_id"`
	AccountID     int64  `json:"account_id"`
	Amount        Amount `json:"amount"`
}

// Grant is the access level a user holds within a group. Access is an opaque
// integer bitmask; interpretation is external to the store. At most one grant
// exists per (group, user) pair.
type Grant struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
	Access  int64 `json:"access"`
}
