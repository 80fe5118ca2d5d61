package indexedredis

import "maps"

// ID is a record's store-issued identity. Zero means the record has never
// been saved.
type ID uint64

// Record is a single object of a model: a map of typed field values plus a
// snapshot of the last saved state, used to diff out the changed fields on
// Save and Reload.
type Record struct {
	db    *DB
	model *Model
	id    ID
	saved bool

	// vals holds the current typed values, base the values as of the last
	// load or save. Both always carry an entry for every model field.
	vals map[string]Value
	base map[string]Value
}

// New creates an unsaved record from raw input values. Inputs are converted
// field by field; fields absent from input start out null.
func (db *DB) New(model *Model, input map[string]any) (*Record, error) {
	r := &Record{
		db:    db,
		model: model,
		vals:  make(map[string]Value, len(model.fields)),
	}
	for name := range input {
		if model.fieldsByName[name] == nil {
			return nil, schemaErrf(model.name, name, "unknown field")
		}
	}
	for _, f := range model.fields {
		in, ok := input[f.name]
		if !ok {
			r.vals[f.name] = Null()
			continue
		}
		v, err := f.FromInput(in)
		if err != nil {
			return nil, err
		}
		r.attach(&v)
		r.vals[f.name] = v
	}
	r.base = snapshotValues(r.vals)
	return r, nil
}

// attach binds any link inside v to this record's database, so that the
// link can resolve itself later.
func (r *Record) attach(v *Value) {
	if v.link != nil && v.link.db == nil {
		v.link.db = r.db
	}
}

func (r *Record) DB() *DB {
	return r.db
}

func (r *Record) Model() *Model {
	return r.model
}

// ID returns the store identity, zero for never-saved records.
func (r *Record) ID() ID {
	return r.id
}

// IsSaved reports whether the record exists in the store.
func (r *Record) IsSaved() bool {
	return r.saved
}

// Get returns the current value of the named field. Asking for a field the
// model does not have is a programming error and panics.
func (r *Record) Get(name string) Value {
	f := r.model.fieldsByName[name]
	if f == nil {
		panic(schemaErrf(r.model.name, name, "unknown field"))
	}
	return r.vals[name]
}

// Set converts the input and assigns it to the named field. The change is
// local until Save.
func (r *Record) Set(name string, input any) error {
	f := r.model.fieldsByName[name]
	if f == nil {
		return schemaErrf(r.model.name, name, "unknown field")
	}
	v, err := f.FromInput(input)
	if err != nil {
		return err
	}
	r.attach(&v)
	r.vals[name] = v
	return nil
}

// Link returns the link held by the named field, nil when the field is null
// or not a link field.
func (r *Record) Link(name string) *Link {
	v := r.Get(name)
	l, _ := v.AsLink()
	return l
}

// ResolveLink fetches and caches the target of the named link field.
// Returns nil when the field is null.
func (r *Record) ResolveLink(name string) (*Record, error) {
	l := r.Link(name)
	if l == nil {
		return nil, nil
	}
	return l.Resolve()
}

// UpdatedFields returns the fields changed since the last load or save,
// keyed by field name. Returns nil when the record is clean.
func (r *Record) UpdatedFields() map[string]Change {
	return diffValues(r.model, r.base, r.vals)
}

// HasUnsavedChanges reports whether saving would write anything. A record
// that has never been saved always has unsaved changes. With cascade, the
// check walks resolved links too.
func (r *Record) HasUnsavedChanges(cascade bool) bool {
	return r.hasUnsavedChanges(cascade, make(map[*Record]bool))
}

func (r *Record) hasUnsavedChanges(cascade bool, seen map[*Record]bool) bool {
	if seen[r] {
		return false
	}
	seen[r] = true
	if !r.saved {
		return true
	}
	if len(diffValues(r.model, r.base, r.vals)) > 0 {
		return true
	}
	if !cascade {
		return false
	}
	for _, f := range r.model.fields {
		l, _ := r.vals[f.name].AsLink()
		if l == nil || l.obj == nil {
			continue
		}
		if l.obj.hasUnsavedChanges(true, seen) {
			return true
		}
	}
	return false
}

// HasSameValues reports whether two records of the same model hold equal
// field values. Identity and saved state do not matter. Without cascade,
// link fields compare by target identity; with cascade, resolved links
// compare their targets' values recursively.
func (r *Record) HasSameValues(o *Record, cascade bool) bool {
	return r.hasSameValues(o, cascade, make(map[recordPair]bool))
}

type recordPair [2]*Record

func (r *Record) hasSameValues(o *Record, cascade bool, seen map[recordPair]bool) bool {
	if o == nil {
		return false
	}
	if r == o {
		return true
	}
	if r.model != o.model {
		return false
	}
	pair := recordPair{r, o}
	if seen[pair] {
		// Cycle: both sides revisit the same pair, so the comparison so
		// far has found no difference along this path.
		return true
	}
	seen[pair] = true
	for _, f := range r.model.fields {
		a, b := r.vals[f.name], o.vals[f.name]
		if cascade {
			la, _ := a.AsLink()
			lb, _ := b.AsLink()
			if la != nil && lb != nil && la.obj != nil && lb.obj != nil {
				if !la.obj.hasSameValues(lb.obj, true, seen) {
					return false
				}
				continue
			}
		}
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// AsDict returns a copy of the record's fields. With forStorage, values are
// rendered in their storage byte form instead of their typed form.
func (r *Record) AsDict(forStorage bool) map[string]Value {
	out := make(map[string]Value, len(r.model.fields))
	for _, f := range r.model.fields {
		v := r.vals[f.name]
		if forStorage {
			raw, err := f.ToStorage(v)
			if err != nil {
				raw = nil
			}
			out[f.name] = Bytes(raw)
			continue
		}
		out[f.name] = v
	}
	return out
}

func snapshotValues(vals map[string]Value) map[string]Value {
	return maps.Clone(vals)
}
