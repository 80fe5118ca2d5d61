package indexedredis

// Delete removes this record from the store, index entries included. The
// record reverts to the never-saved state and can be saved again under a
// new id. Deleting a never-saved record is ErrNotSaved.
func (r *Record) Delete() error {
	if !r.saved {
		return ErrNotSaved
	}
	if err := r.db.DeleteByID(r.model, r.id); err != nil {
		return err
	}
	r.id = 0
	r.saved = false
	return nil
}

// DeleteByID removes a record by id. Deleting a missing record is a no-op.
func (db *DB) DeleteByID(model *Model, id ID) error {
	return db.update("delete", func(tx StoreTx) error {
		stored, err := tx.GetFields(model.name, id)
		if err != nil {
			return storErrf("delete", model.name, id, err)
		}
		if stored == nil {
			if db.verbose {
				db.logf("db: DELETE.NOOP %s/%d", model.name, id)
			}
			return nil
		}
		for _, f := range model.indexed {
			if err := tx.IndexDel(model.name, f.name, f.indexValueForStored(stored[f.name]), id); err != nil {
				return storErrf("delete", model.name, id, err)
			}
		}
		if err := tx.DeleteRecord(model.name, id); err != nil {
			return storErrf("delete", model.name, id, err)
		}
		db.stats.deletes.Add(1)
		if db.verbose {
			db.logf("db: DELETE %s/%d", model.name, id)
		}
		return nil
	})
}

// DestroyModel removes all records and index entries of a model and resets
// its id sequence.
func (db *DB) DestroyModel(model *Model) error {
	return db.update("destroy", func(tx StoreTx) error {
		if err := tx.DropModel(model.name); err != nil {
			return storErrf("destroy", model.name, 0, err)
		}
		if db.verbose {
			db.logf("db: DESTROY %s", model.name)
		}
		return nil
	})
}
