package types

import "time"

// Journal operations recorded by the store.
const (
	JournalOpCreate  = "create"
	JournalOpReplace = "replace"
	JournalOpDelete  = "delete"
)

// JournalEntry records one change to a resource. Entries are appended inside
// the same transaction as the change they describe and survive the resource's
// deletion.
type JournalEntry struct {
	EntryID    string    `json:"entry_id"` // UUID v7, generated on append.
	Op         string    `json:"op"`
	ResourceID int64     `json:"resource_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
