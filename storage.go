package indexedredis

// Store represents a key-value storage backend (Bolt, in-memory, Redis-like
// servers, etc.). A backend holds, per model, a sequence of record ids, the
// record field maps and one sorted set per indexed field.
type Store interface {
	// Begin starts a new transaction.
	Begin(writable bool) (StoreTx, error)
	// Close closes the store.
	Close() error
}

// StoreTx represents a store transaction. Reads observe a consistent
// snapshot; writes become visible to other transactions on Commit.
type StoreTx interface {
	// Writable returns true if this is a writable transaction.
	Writable() bool

	// GetFields retrieves a record's stored fields by id.
	// Returns nil if the record doesn't exist.
	GetFields(model string, id ID) (map[string][]byte, error)

	// SetFields merges the given fields into a record, creating the record
	// if needed. Fields absent from the map keep their stored value.
	SetFields(model string, id ID, fields map[string][]byte) error

	// DeleteRecord removes a record. Deleting a missing record is a no-op.
	DeleteRecord(model string, id ID) error

	// NextID issues the next record id for a model, starting at 1. Issued
	// ids are never reused, even if the record is deleted.
	NextID(model string) (ID, error)

	// IndexAdd records that the given field value maps to the given id.
	// Adding an existing entry is a no-op.
	IndexAdd(model, field, value string, id ID) error

	// IndexDel removes an index entry. Removing a missing entry is a no-op.
	IndexDel(model, field, value string, id ID) error

	// IndexLookup returns the ids recorded for an exact field value, in
	// ascending order.
	IndexLookup(model, field, value string) ([]ID, error)

	// IndexWalk calls fn for every entry of a field's index, ordered by
	// value and then by id. Walking a missing index is a no-op.
	IndexWalk(model, field string, fn func(value string, id ID) error) error

	// ListIDs returns all record ids of a model, in ascending order.
	ListIDs(model string) ([]ID, error)

	// DropIndex removes every entry of a field's index. Dropping a missing
	// index is a no-op.
	DropIndex(model, field string) error

	// DropModel removes all records, ids and index entries of a model.
	// The model's sequence restarts from 1.
	DropModel(model string) error

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It is safe to call after Commit.
	Rollback() error
}
