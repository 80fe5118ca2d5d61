package indexedredis

import (
	"context"
	"log/slog"
)

// Reindex rebuilds a model's secondary indexes from its stored records. Every
// index is dropped and repopulated with one entry per record, which removes
// stale entries left behind by out-of-band writes and backfills an index
// declared on a field that already holds data.
func (db *DB) Reindex(model *Model) error {
	var records, entries int
	err := db.update("reindex", func(tx StoreTx) error {
		for _, f := range model.indexed {
			if err := tx.DropIndex(model.name, f.name); err != nil {
				return storErrf("reindex", model.name, 0, err)
			}
		}
		ids, err := tx.ListIDs(model.name)
		if err != nil {
			return storErrf("reindex", model.name, 0, err)
		}
		for _, id := range ids {
			stored, err := tx.GetFields(model.name, id)
			if err != nil {
				return storErrf("reindex", model.name, id, err)
			}
			records++
			for _, f := range model.indexed {
				if err := tx.IndexAdd(model.name, f.name, f.indexValueForStored(stored[f.name]), id); err != nil {
					return storErrf("reindex", model.name, id, err)
				}
				entries++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if db.verbose {
		db.logf("db: REINDEX %s: %d records, %d index entries", model.name, records, entries)
	}
	slog.LogAttrs(context.Background(), slog.LevelDebug, "db: reindexed",
		slog.String("model", model.name), slog.Int("records", records), slog.Int("entries", entries))
	return nil
}
