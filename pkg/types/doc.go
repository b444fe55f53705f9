// Package types defines the Store interface, entity types, and standard
// errors for the resourcestore engine.
//
// A Store holds typed generic resources: each resource has a 64-bit id, an
// immutable type tag, and an optional JSON document. Named typed attributes
// (string, reference, integer, amount, date) attach multi-valued facts to a
// resource, and three relation tables express edges between resources
// (references, ledger postings, group access grants). The Store enforces
// referential integrity and uniqueness across all of them transactionally.
package types
