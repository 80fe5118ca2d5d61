package indexedredis

// view runs fn inside a read-only store transaction.
func (db *DB) view(op string, fn func(tx StoreTx) error) error {
	stx, err := db.store.Begin(false)
	if err != nil {
		return storErrf(op, "", 0, err)
	}
	defer stx.Rollback()
	db.stats.reads.Add(1)
	return fn(stx)
}

// update runs fn inside a writable store transaction. Commits when fn
// succeeds, rolls back when it fails.
func (db *DB) update(op string, fn func(tx StoreTx) error) error {
	stx, err := db.store.Begin(true)
	if err != nil {
		return storErrf(op, "", 0, err)
	}
	db.stats.writes.Add(1)
	if err := fn(stx); err != nil {
		stx.Rollback()
		return err
	}
	if err := stx.Commit(); err != nil {
		return storErrf(op, "", 0, err)
	}
	return nil
}
