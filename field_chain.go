package indexedredis

// ChainField composes several field stages into one: ToStorage applies the
// stages in declaration order, FromStorage in reverse. The chain's value
// type is the first stage's; each later stage consumes the previous stage's
// storage form.
//
// A chain can be indexed only when every stage can; it hashes its index
// entries when any stage does. Null short-circuits the whole chain.
func ChainField(name string, stages ...*Field) *Field {
	if len(stages) == 0 {
		panic(schemaErrf("", name, "chain needs at least one stage"))
	}
	f := newField(name, chainType{stages})
	for _, st := range stages {
		if st.hashed {
			f.hashed = true
		}
	}
	return f
}

type chainType struct {
	stages []*Field
}

func (t chainType) kind() Kind { return t.stages[0].typ.kind() }

func (t chainType) canIndex() bool {
	for _, st := range t.stages {
		if !st.typ.canIndex() {
			return false
		}
	}
	return true
}

func (t chainType) emptyValue() Value { return t.stages[0].typ.emptyValue() }

func (t chainType) fromInput(name string, v any) (Value, error) {
	return t.stages[0].FromInput(v)
}

func (t chainType) toStorage(name string, v Value) ([]byte, error) {
	cur := v
	var raw []byte
	for i, st := range t.stages {
		var err error
		raw, err = st.ToStorage(cur)
		if err != nil {
			return nil, err
		}
		if i+1 < len(t.stages) {
			cur, err = t.stages[i+1].FromInput(raw)
			if err != nil {
				return nil, err
			}
		}
	}
	return raw, nil
}

func (t chainType) fromStorage(name string, raw []byte) (Value, error) {
	var v Value
	for i := len(t.stages) - 1; i >= 0; i-- {
		var err error
		v, err = t.stages[i].FromStorage(raw)
		if err != nil {
			return Value{}, err
		}
		if i > 0 {
			raw, err = stageBytes(t.stages[i], v)
			if err != nil {
				return Value{}, err
			}
		}
	}
	return v, nil
}

// stageBytes bridges a decoded stage value to the byte form the previous
// stage decodes from.
func stageBytes(st *Field, v Value) ([]byte, error) {
	if b, ok := v.AsBytes(); ok {
		return b, nil
	}
	if s, ok := v.AsString(); ok {
		return []byte(s), nil
	}
	return st.ToStorage(v)
}
