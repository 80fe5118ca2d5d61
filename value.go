package indexedredis

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents the zero Value.
	KindInvalid Kind = iota
	// KindNull represents the null sentinel.
	KindNull
	// KindBytes represents a raw byte string.
	KindBytes
	// KindString represents a string value.
	KindString
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a floating-point value.
	KindFloat
	// KindBool represents a boolean value.
	KindBool
	// KindOpaque represents an arbitrary serialized Go value.
	KindOpaque
	// KindRef represents a link to a record of another model.
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindOpaque:
		return "opaque"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}

// Value is a small typed value held by a record field.
//
// The zero Value is invalid; use Null for the null sentinel. Null equals
// only itself, never the empty string, zero or false.
type Value struct {
	kind Kind
	raw  []byte
	str  string
	i64  int64
	f64  float64
	b    bool
	o    any
	link *Link
}

// Null returns the null sentinel.
func Null() Value { return Value{kind: KindNull} }

// Bytes returns a raw byte string value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// Str returns a string value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i64: v} }

// Float returns a floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, f64: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Opaque returns a value wrapping an arbitrary Go payload.
func Opaque(v any) Value { return Value{kind: KindOpaque, o: v} }

// RefValue returns a value wrapping a link handle.
func RefValue(l *Link) Value { return Value{kind: KindRef, link: l} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBytes returns the byte string if the value holds one.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind == KindBytes {
		return v.raw, true
	}
	return nil, false
}

// AsString returns the string if the value holds one.
func (v Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.str, true
	}
	return "", false
}

// AsInt returns the integer if the value holds one.
func (v Value) AsInt() (int64, bool) {
	if v.kind == KindInt {
		return v.i64, true
	}
	return 0, false
}

// AsFloat returns the float if the value holds one.
func (v Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f64, true
	}
	return 0, false
}

// AsBool returns the boolean if the value holds one.
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// AsOpaque returns the opaque payload if the value holds one.
func (v Value) AsOpaque() (any, bool) {
	if v.kind == KindOpaque {
		return v.o, true
	}
	return nil, false
}

// AsLink returns the link handle if the value holds one.
func (v Value) AsLink() (*Link, bool) {
	if v.kind == KindRef {
		return v.link, true
	}
	return nil, false
}

// Any returns the value as a plain Go value: nil for null, otherwise
// []byte, string, int64, float64, bool, the opaque payload or *Link.
func (v Value) Any() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBytes:
		return v.raw
	case KindString:
		return v.str
	case KindInt:
		return v.i64
	case KindFloat:
		return v.f64
	case KindBool:
		return v.b
	case KindOpaque:
		return v.o
	case KindRef:
		return v.link
	default:
		return nil
	}
}

// Equal reports whether two values are the same. Null equals only Null.
// Links compare by target id and are never resolved; opaque payloads
// compare deeply.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBytes:
		return bytes.Equal(v.raw, w.raw)
	case KindString:
		return v.str == w.str
	case KindInt:
		return v.i64 == w.i64
	case KindFloat:
		return v.f64 == w.f64
	case KindBool:
		return v.b == w.b
	case KindOpaque:
		return reflect.DeepEqual(v.o, w.o)
	case KindRef:
		return v.link.sameTarget(w.link)
	default:
		return v.kind == w.kind
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBytes:
		return fmt.Sprintf("bytes(%q)", v.raw)
	case KindString:
		return strconv.Quote(v.str)
	case KindInt:
		return strconv.FormatInt(v.i64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindOpaque:
		return fmt.Sprintf("opaque(%v)", v.o)
	case KindRef:
		return v.link.String()
	default:
		return "<invalid>"
	}
}
