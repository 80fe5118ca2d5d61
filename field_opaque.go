package indexedredis

type opaqueType struct{}

func (opaqueType) kind() Kind        { return KindOpaque }
func (opaqueType) canIndex() bool    { return false }
func (opaqueType) emptyValue() Value { return Bytes(nil) }

func (opaqueType) fromInput(name string, v any) (Value, error) {
	// []byte input passes through raw; everything else is serialized.
	if b, ok := v.([]byte); ok {
		return Bytes(b), nil
	}
	return Opaque(v), nil
}

func (opaqueType) toStorage(name string, v Value) ([]byte, error) {
	if b, ok := v.AsBytes(); ok {
		return b, nil
	}
	o, ok := v.AsOpaque()
	if !ok {
		return nil, convErrf(name, v, nil, "not an opaque value")
	}
	out, err := encodeOpaque(o)
	if err != nil {
		return nil, convErrf(name, o, err, "cannot serialize value")
	}
	return out, nil
}

func (opaqueType) fromStorage(name string, raw []byte) (Value, error) {
	if v, ok := decodeOpaque(raw); ok {
		return Opaque(v), nil
	}
	return Bytes(raw), nil
}
