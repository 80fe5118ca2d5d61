package indexedredis

// Get fetches a record by id. Returns nil when the record doesn't exist.
// Link fields come back unresolved; use CascadeFetch or Link.Resolve to
// materialize their targets.
func (db *DB) Get(model *Model, id ID) (*Record, error) {
	var r *Record
	err := db.view("get", func(tx StoreTx) error {
		var err error
		r, err = db.getInTx(tx, model, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Exists reports whether a record with the given id exists, without
// decoding it.
func (db *DB) Exists(model *Model, id ID) (bool, error) {
	var found bool
	err := db.view("exists", func(tx StoreTx) error {
		stored, err := tx.GetFields(model.name, id)
		if err != nil {
			return storErrf("exists", model.name, id, err)
		}
		found = stored != nil
		return nil
	})
	if err != nil {
		return false, err
	}
	if db.verbose {
		db.logf("db: EXISTS.%s %s/%d", map[bool]string{false: "NO", true: "YES"}[found], model.name, id)
	}
	return found, nil
}

func (db *DB) getInTx(tx StoreTx, model *Model, id ID) (*Record, error) {
	db.stats.gets.Add(1)
	stored, err := tx.GetFields(model.name, id)
	if err != nil {
		return nil, storErrf("get", model.name, id, err)
	}
	if stored == nil {
		if db.verbose {
			db.logf("db: GET.NOTFOUND %s/%d", model.name, id)
		}
		return nil, nil
	}
	if db.verbose {
		db.logf("db: GET %s/%d => %d fields", model.name, id, len(stored))
	}
	return db.recordFromStored(model, id, stored)
}

// recordFromStored decodes a stored field map into a clean record. Fields
// the stored map doesn't mention decode from the empty form.
func (db *DB) recordFromStored(model *Model, id ID, stored map[string][]byte) (*Record, error) {
	r := &Record{
		db:    db,
		model: model,
		id:    id,
		saved: true,
		vals:  make(map[string]Value, len(model.fields)),
	}
	for _, f := range model.fields {
		v, err := f.FromStorage(stored[f.name])
		if err != nil {
			return nil, err
		}
		r.attach(&v)
		r.vals[f.name] = v
	}
	r.base = snapshotValues(r.vals)
	return r, nil
}

// refKey identifies a record by model name and id across a cascade walk.
type refKey struct {
	model string
	id    ID
}

// CascadeFetch resolves every link reachable from this record, reusing one
// record object per distinct target so that cyclic object graphs come back
// cyclic.
func (r *Record) CascadeFetch() error {
	byKey := map[refKey]*Record{{r.model.name, r.id}: r}
	return r.cascadeFetch(byKey, make(map[*Record]bool))
}

func (r *Record) cascadeFetch(byKey map[refKey]*Record, visited map[*Record]bool) error {
	if visited[r] {
		return nil
	}
	visited[r] = true
	for _, f := range r.model.fields {
		l, _ := r.vals[f.name].AsLink()
		if l == nil {
			continue
		}
		if l.obj == nil && l.id != 0 {
			key := refKey{l.targetName, l.id}
			if known := byKey[key]; known != nil {
				l.obj = known
				l.fetched = true
			} else {
				obj, err := l.Resolve()
				if err != nil {
					return err
				}
				if obj != nil {
					byKey[key] = obj
				}
			}
		}
		if l.obj != nil && !visited[l.obj] {
			byKey[refKey{l.obj.model.name, l.obj.id}] = l.obj
			if err := l.obj.cascadeFetch(byKey, visited); err != nil {
				return err
			}
		}
	}
	return nil
}
