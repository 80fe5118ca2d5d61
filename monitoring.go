package indexedredis

import "sync/atomic"

// dbStats counts operations since Open. Reads and writes count store
// transactions, the rest count logical operations.
type dbStats struct {
	gets    atomic.Uint64
	saves   atomic.Uint64
	deletes atomic.Uint64
	lookups atomic.Uint64
	reloads atomic.Uint64
	reads   atomic.Uint64
	writes  atomic.Uint64
}

// Stats is a point-in-time snapshot of a DB's operation counters.
type Stats struct {
	Gets    uint64
	Saves   uint64
	Deletes uint64
	Lookups uint64
	Reloads uint64
	Reads   uint64
	Writes  uint64
}

func (db *DB) Stats() Stats {
	return Stats{
		Gets:    db.stats.gets.Load(),
		Saves:   db.stats.saves.Load(),
		Deletes: db.stats.deletes.Load(),
		Lookups: db.stats.lookups.Load(),
		Reloads: db.stats.reloads.Load(),
		Reads:   db.stats.reads.Load(),
		Writes:  db.stats.writes.Load(),
	}
}
