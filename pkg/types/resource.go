package types

import "encoding/json"

// Resource is the universal entity: anything typed and identified by a 64-bit
// integer id. The id and type tag are immutable once created; changing a
// resource's type requires delete and recreate. The document is an opaque
// JSON payload and may be nil.
type Resource struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	Document json.RawMessage `json:"resource,omitempty"`
}

// Attribute pairs a name with a typed value for
// Store.CreateResourceWithAttributes.
type Attribute struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}
