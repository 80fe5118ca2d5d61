package indexedredis

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Query matches records of one model against indexed field values. All
// conditions must hold (set intersection). Conditions accumulate errors;
// the first one surfaces when the query runs.
type Query struct {
	db    *DB
	model *Model
	conds []queryCond
	err   error
}

type queryCond struct {
	field *Field
	value string
}

func (db *DB) Query(model *Model) *Query {
	return &Query{db: db, model: model}
}

// Filter adds an exact-match condition on an indexed field. The input is
// converted through the field before matching, so Filter("age", "30") and
// Filter("age", 30) match the same records. For a hashed field, an input
// that already looks like an md5 hex digest is used as the index value
// directly.
func (q *Query) Filter(name string, input any) *Query {
	if q.err != nil {
		return q
	}
	f := q.model.fieldsByName[name]
	if f == nil {
		q.err = schemaErrf(q.model.name, name, "unknown field")
		return q
	}
	if !f.indexed {
		q.err = schemaErrf(q.model.name, name, "field is not indexed")
		return q
	}
	value, err := q.filterValue(f, input)
	if err != nil {
		q.err = err
		return q
	}
	q.conds = append(q.conds, queryCond{field: f, value: value})
	return q
}

func (q *Query) filterValue(f *Field, input any) (string, error) {
	if r, ok := input.(*Record); ok && r != nil && r.id == 0 {
		return "", &IntegrityError{q.model.name, f.name, "cannot filter by an unsaved record"}
	}
	if f.hashed {
		if s, ok := input.(string); ok && isHexDigest(s) {
			return s, nil
		}
	}
	v, err := f.FromInput(input)
	if err != nil {
		return "", err
	}
	return f.indexValue(v)
}

// IDs runs the query and returns the matching ids in ascending order.
func (q *Query) IDs() ([]ID, error) {
	var ids []ID
	err := q.db.view("lookup", func(tx StoreTx) error {
		var err error
		ids, err = q.idsInTx(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// All runs the query and fetches the matching records. With cascade, every
// link reachable from a result is resolved too.
func (q *Query) All(cascade bool) ([]*Record, error) {
	var recs []*Record
	err := q.db.view("lookup", func(tx StoreTx) error {
		ids, err := q.idsInTx(tx)
		if err != nil {
			return err
		}
		recs = make([]*Record, 0, len(ids))
		for _, id := range ids {
			r, err := q.db.getInTx(tx, q.model, id)
			if err != nil {
				return err
			}
			if r == nil {
				// Index entry outlived its record; skip.
				continue
			}
			recs = append(recs, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cascade {
		for _, r := range recs {
			if err := r.CascadeFetch(); err != nil {
				return nil, err
			}
		}
	}
	return recs, nil
}

// First returns the matching record with the lowest id, nil when nothing
// matches.
func (q *Query) First(cascade bool) (*Record, error) {
	var rec *Record
	err := q.db.view("lookup", func(tx StoreTx) error {
		ids, err := q.idsInTx(tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			r, err := q.db.getInTx(tx, q.model, id)
			if err != nil {
				return err
			}
			if r != nil {
				rec = r
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cascade && rec != nil {
		if err := rec.CascadeFetch(); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Count returns the number of matching ids.
func (q *Query) Count() (int, error) {
	ids, err := q.IDs()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (q *Query) idsInTx(tx StoreTx) ([]ID, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.db.stats.lookups.Add(1)

	if len(q.conds) == 0 {
		ids, err := tx.ListIDs(q.model.name)
		if err != nil {
			return nil, storErrf("lookup", q.model.name, 0, err)
		}
		if q.db.verbose {
			q.db.logf("db: LOOKUP %s (all) => %d", q.model.name, len(ids))
		}
		return ids, nil
	}

	var acc *roaring64.Bitmap
	for _, cond := range q.conds {
		ids, err := tx.IndexLookup(q.model.name, cond.field.name, cond.value)
		if err != nil {
			return nil, storErrf("lookup", q.model.name, 0, err)
		}
		bm := roaring64.New()
		for _, id := range ids {
			bm.Add(uint64(id))
		}
		if acc == nil {
			acc = bm
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			if q.db.verbose {
				q.db.logf("db: LOOKUP.NOTFOUND %s (%d conds)", q.model.name, len(q.conds))
			}
			return nil, nil
		}
	}

	out := make([]ID, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		out = append(out, ID(it.Next()))
	}
	if q.db.verbose {
		q.db.logf("db: LOOKUP %s (%d conds) => %d", q.model.name, len(q.conds), len(out))
	}
	return out, nil
}
