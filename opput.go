package indexedredis

// Save writes this record to the store. A never-saved record is inserted
// under a fresh id; a saved record writes only its changed fields and
// updates only the affected index entries. With cascade, resolved link
// targets are saved in the same transaction, targets before holders.
// Returns the ids of the saved records, this record's first.
func (r *Record) Save(cascade bool) ([]ID, error) {
	return r.db.SaveAll([]*Record{r}, cascade)
}

// SaveAll saves several records atomically inside one store transaction.
// Either every record's changes commit or none do.
//
// Without cascade, a resolved link to a never-saved record is an
// IntegrityError, reported before anything is written.
func (db *DB) SaveAll(recs []*Record, cascade bool) ([]ID, error) {
	var order []*Record
	if cascade {
		order = collectSaveOrder(recs, make(map[*Record]bool))
	} else {
		for _, r := range recs {
			if f, _ := r.unsavedLinkTarget(); f != nil {
				return nil, &IntegrityError{r.model.name, f.name,
					"linked record has never been saved (use cascade save)"}
			}
		}
		order = recs
	}
	for _, r := range order {
		if r.db != db {
			return nil, &IntegrityError{r.model.name, "", "record belongs to a different database"}
		}
	}

	var assigned []*Record
	inserts := make(map[*Record]bool)
	err := db.update("save", func(tx StoreTx) error {
		// Ids are issued up front so that link fields between records of
		// this batch (including cycles) render the final id.
		for _, r := range order {
			if r.id != 0 {
				continue
			}
			id, err := tx.NextID(r.model.name)
			if err != nil {
				return storErrf("save", r.model.name, 0, err)
			}
			r.id = id
			assigned = append(assigned, r)
			inserts[r] = true
		}
		for _, r := range order {
			if err := db.saveOne(tx, r, inserts[r]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, r := range assigned {
			r.id = 0
		}
		return nil, err
	}

	for _, r := range order {
		r.saved = true
		r.base = snapshotValues(r.vals)
	}
	ids := make([]ID, len(recs))
	for i, r := range recs {
		ids[i] = r.id
	}
	return ids, nil
}

func (db *DB) saveOne(tx StoreTx, r *Record, insert bool) error {
	if insert {
		fields := make(map[string][]byte, len(r.model.fields))
		for _, f := range r.model.fields {
			raw, err := f.ToStorage(r.vals[f.name])
			if err != nil {
				return err
			}
			fields[f.name] = raw
		}
		if err := tx.SetFields(r.model.name, r.id, fields); err != nil {
			return storErrf("save", r.model.name, r.id, err)
		}
		for _, f := range r.model.indexed {
			if err := tx.IndexAdd(r.model.name, f.name, f.indexValueForStored(fields[f.name]), r.id); err != nil {
				return storErrf("save", r.model.name, r.id, err)
			}
		}
		db.stats.saves.Add(1)
		if db.verbose {
			db.logf("db: SAVE %s/%d (insert, %d fields)", r.model.name, r.id, len(fields))
		}
		return nil
	}

	changes := diffValues(r.model, r.base, r.vals)
	if len(changes) == 0 {
		if db.verbose {
			db.logf("db: SAVE.NOOP %s/%d", r.model.name, r.id)
		}
		return nil
	}
	fields := make(map[string][]byte, len(changes))
	for name, chg := range changes {
		raw, err := r.model.fieldsByName[name].ToStorage(chg.New)
		if err != nil {
			return err
		}
		fields[name] = raw
	}
	if err := tx.SetFields(r.model.name, r.id, fields); err != nil {
		return storErrf("save", r.model.name, r.id, err)
	}
	for _, f := range r.model.indexed {
		chg, ok := changes[f.name]
		if !ok {
			continue
		}
		oldRaw, err := f.ToStorage(chg.Old)
		if err != nil {
			return err
		}
		oldVal, newVal := f.indexValueForStored(oldRaw), f.indexValueForStored(fields[f.name])
		if oldVal == newVal {
			continue
		}
		if err := tx.IndexDel(r.model.name, f.name, oldVal, r.id); err != nil {
			return storErrf("save", r.model.name, r.id, err)
		}
		if err := tx.IndexAdd(r.model.name, f.name, newVal, r.id); err != nil {
			return storErrf("save", r.model.name, r.id, err)
		}
	}
	db.stats.saves.Add(1)
	if db.verbose {
		db.logf("db: SAVE %s/%d (update: %s)", r.model.name, r.id, changedFieldNames(changes))
	}
	return nil
}

// collectSaveOrder runs a depth-first walk over resolved links and returns
// the records in dependency order, targets before the records that link to
// them. Cycles are cut at the first revisited record.
func collectSaveOrder(recs []*Record, seen map[*Record]bool) []*Record {
	var order []*Record
	for _, r := range recs {
		order = appendSaveOrder(order, r, seen)
	}
	return order
}

func appendSaveOrder(order []*Record, r *Record, seen map[*Record]bool) []*Record {
	if seen[r] {
		return order
	}
	seen[r] = true
	for _, f := range r.model.fields {
		l, _ := r.vals[f.name].AsLink()
		if l != nil && l.obj != nil {
			order = appendSaveOrder(order, l.obj, seen)
		}
	}
	return append(order, r)
}

// unsavedLinkTarget returns the first link field whose resolved target has
// never been saved.
func (r *Record) unsavedLinkTarget() (*Field, *Link) {
	for _, f := range r.model.fields {
		l, _ := r.vals[f.name].AsLink()
		if l != nil && l.obj != nil && l.obj.id == 0 {
			return f, l
		}
	}
	return nil, nil
}
