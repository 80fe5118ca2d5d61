package indexedredis

import (
	"strconv"
)

// Link is a lazily resolved reference to a record of another (or the same)
// model. A link is either id-only or carries a cached resolved record;
// assigning a new value to the field replaces the handle wholesale.
//
// Reading the id or asking IsFetched never touches the store; Resolve
// fetches the target at most once and caches it.
type Link struct {
	db         *DB
	targetName string
	id         ID
	obj        *Record
	fetched    bool
}

// ID returns the target's id without resolving the link. For a link
// carrying a resolved record, this is the record's current id, which is
// zero until the record is first saved.
func (l *Link) ID() ID {
	if l == nil {
		return 0
	}
	if l.obj != nil {
		return l.obj.id
	}
	return l.id
}

// IsFetched reports whether the target record has been resolved and cached.
func (l *Link) IsFetched() bool {
	return l != nil && l.fetched
}

// Record returns the cached target record without fetching, nil when the
// link has not been resolved.
func (l *Link) Record() *Record {
	if l == nil {
		return nil
	}
	return l.obj
}

// ModelName returns the name of the target model.
func (l *Link) ModelName() string {
	if l == nil {
		return ""
	}
	return l.targetName
}

// Resolve fetches the target record, caching it for later calls. It returns
// nil for a link without a target id and for a target that no longer
// exists; a missing target is retried on the next call.
func (l *Link) Resolve() (*Record, error) {
	if l == nil {
		return nil, nil
	}
	if l.obj != nil {
		return l.obj, nil
	}
	if l.id == 0 {
		return nil, nil
	}
	if l.db == nil {
		return nil, &IntegrityError{Model: l.targetName, Msg: "link is not attached to a database"}
	}
	m := l.db.schema.Model(l.targetName)
	if m == nil {
		return nil, schemaErrf(l.targetName, "", "link targets an unknown model")
	}
	obj, err := l.db.Get(m, l.id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	l.obj = obj
	l.fetched = true
	return obj, nil
}

// sameTarget reports whether two links point at the same record. Neither
// link is resolved.
func (l *Link) sameTarget(o *Link) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.targetName == o.targetName && l.ID() == o.ID()
}

func linkID(l *Link) ID { return l.ID() }

func (l *Link) String() string {
	if l == nil {
		return "ref(nil)"
	}
	s := "ref(" + l.targetName + "/" + strconv.FormatUint(uint64(l.ID()), 10)
	if l.fetched {
		s += "*"
	}
	return s + ")"
}

type refType struct {
	target string
}

func (refType) kind() Kind        { return KindRef }
func (refType) canIndex() bool    { return true }
func (refType) emptyValue() Value { return Null() }

func (t refType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case *Record:
		if v == nil {
			return Null(), nil
		}
		if v.model.name != t.target {
			return Value{}, convErrf(name, v, nil, "record of model %s does not fit a link to %s", v.model.name, t.target)
		}
		return RefValue(&Link{db: v.db, targetName: t.target, id: v.id, obj: v, fetched: true}), nil
	case *Link:
		if v == nil {
			return Null(), nil
		}
		if v.targetName != t.target {
			return Value{}, convErrf(name, v, nil, "link to %s does not fit a link to %s", v.targetName, t.target)
		}
		return RefValue(v), nil
	case ID:
		return t.fromID(ID(v)), nil
	case uint64:
		return t.fromID(ID(v)), nil
	case int:
		if v < 0 {
			return Value{}, convErrf(name, v, nil, "negative id")
		}
		return t.fromID(ID(v)), nil
	case int64:
		if v < 0 {
			return Value{}, convErrf(name, v, nil, "negative id")
		}
		return t.fromID(ID(v)), nil
	case string:
		return t.parseID(name, v)
	case []byte:
		return t.parseID(name, string(v))
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to a link", v)
}

func (t refType) fromID(id ID) Value {
	if id == 0 {
		return Null()
	}
	return RefValue(&Link{targetName: t.target, id: id})
}

func (t refType) parseID(name, s string) (Value, error) {
	if s == "" {
		return Null(), nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Value{}, convErrf(name, s, err, "invalid link id")
	}
	return t.fromID(ID(id)), nil
}

func (t refType) toStorage(name string, v Value) ([]byte, error) {
	l, ok := v.AsLink()
	if !ok {
		return nil, convErrf(name, v, nil, "not a link value")
	}
	id := l.ID()
	if id == 0 {
		return nil, nil
	}
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

func (t refType) fromStorage(name string, raw []byte) (Value, error) {
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return Value{}, convErrf(name, string(raw), err, "invalid stored link id")
	}
	return t.fromID(ID(id)), nil
}
