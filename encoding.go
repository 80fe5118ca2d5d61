package indexedredis

import (
	"bytes"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeFieldMap renders a field-name-to-storage-bytes map as a msgpack map
// with sorted keys, so the stored encoding of a record is deterministic.
func encodeFieldMap(fields map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := enc.EncodeMapLen(len(names))
	for _, name := range names {
		if err == nil {
			err = enc.EncodeString(name)
		}
		if err == nil {
			err = enc.EncodeBytes(fields[name])
		}
	}
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, dataErrf(nil, 0, err, "encoding record fields")
	}
	return bb.Buf, nil
}

func decodeFieldMap(raw []byte) (map[string][]byte, error) {
	var r bytes.Reader
	r.Reset(raw)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	defer msgpack.PutDecoder(dec)

	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, dataErrf(raw, 0, err, "decoding record fields")
	}
	fields := make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		name, err := dec.DecodeString()
		if err != nil {
			return nil, dataErrf(raw, 0, err, "decoding record field name")
		}
		value, err := dec.DecodeBytes()
		if err != nil {
			return nil, dataErrf(raw, 0, err, "decoding record field %q", name)
		}
		fields[name] = value
	}
	return fields, nil
}

// encodeOpaque serializes an arbitrary Go value for an opaque field.
func encodeOpaque(v any) ([]byte, error) {
	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}
	return bb.Buf, nil
}

// decodeOpaque attempts to decode raw as exactly one msgpack value spanning
// the entire input. ok is false when raw does not look like a serialized
// payload and should pass through as-is.
func decodeOpaque(raw []byte) (any, bool) {
	var r bytes.Reader
	r.Reset(raw)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	dec.UseLooseInterfaceDecoding(true) // ints as int64 at any nesting depth
	v, err := dec.DecodeInterfaceLoose()
	msgpack.PutDecoder(dec)
	if err != nil || r.Len() > 0 {
		return nil, false
	}
	return v, true
}
