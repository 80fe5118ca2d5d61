package indexedredis

import (
	"math"
	"strconv"
	"strings"
)

// Field describes a single named attribute of a model: how user input
// converts to a typed value, how the value is laid out in storage, and
// whether a secondary index may be declared over it.
//
// Constructors return fields detached from any model; AddModel attaches
// them. A Field must not be shared between models.
type Field struct {
	name   string
	typ    fieldType
	hashed bool

	model   *Model
	indexed bool
}

// fieldType implements the per-type conversion rules of a Field. Null and
// the empty storage form are handled centrally by Field and never reach
// toStorage/fromStorage.
type fieldType interface {
	kind() Kind
	canIndex() bool

	// emptyValue is what the empty storage form decodes to: the empty value
	// for string-like types, Null for everything else.
	emptyValue() Value

	fromInput(name string, v any) (Value, error)
	toStorage(name string, v Value) ([]byte, error)
	fromStorage(name string, raw []byte) (Value, error)
}

func newField(name string, typ fieldType) *Field {
	if name == "" {
		panic(schemaErrf("", "", "field name must not be empty"))
	}
	return &Field{name: name, typ: typ}
}

// StringField holds UTF-8 text. The empty string is an ordinary value,
// distinct from null.
func StringField(name string) *Field { return newField(name, stringType{}) }

// BytesField holds a raw byte string. Byte fields cannot be indexed.
func BytesField(name string) *Field { return newField(name, bytesType{}) }

// IntField holds a signed integer, stored in decimal.
func IntField(name string) *Field { return newField(name, intType{}) }

// FloatField holds a floating-point number. Float fields cannot be indexed:
// their text rendering is not stable enough to serve as an index key.
func FloatField(name string) *Field { return newField(name, floatType{}) }

// BoolField holds a boolean, stored as "true"/"false". Conversion accepts
// "true"/"1" and "false"/"0" in any case.
func BoolField(name string) *Field { return newField(name, boolType{}) }

// DecimalField holds a fixed-point number rounded to the given number of
// decimal places on assignment. Unlike FloatField, the storage form is
// stable and the field can be indexed.
func DecimalField(name string, places int) *Field {
	if places < 0 {
		panic(schemaErrf("", name, "negative decimal places %d", places))
	}
	return newField(name, decimalType{places})
}

// OpaqueField holds an arbitrary Go value, serialized with msgpack. Opaque
// fields cannot be indexed. Stored bytes that do not decode as a single
// serialized value pass through raw.
func OpaqueField(name string) *Field { return newField(name, opaqueType{}) }

// RefField holds a link to a record of the named model, stored as the
// target's decimal id. The target model may be declared later (or be the
// field's own model); Open verifies that every target exists.
func RefField(name, model string) *Field {
	if model == "" {
		panic(schemaErrf("", name, "link target model must not be empty"))
	}
	return newField(name, refType{model})
}

// Hashed declares that index entries for this field hold the MD5 hex digest
// of the storage form instead of the raw value. Useful for long or
// unbounded values.
func (f *Field) Hashed() *Field {
	if !f.typ.canIndex() {
		panic(schemaErrf(fieldModelName(f), f.name, "field type cannot be indexed"))
	}
	f.hashed = true
	return f
}

func (f *Field) Name() string { return f.name }

func (f *Field) Kind() Kind { return f.typ.kind() }

// CanIndex reports whether an index may be declared over this field.
func (f *Field) CanIndex() bool { return f.typ.canIndex() }

// IsIndexed reports whether the owning model declared an index over this
// field.
func (f *Field) IsIndexed() bool { return f.indexed }

// RefTarget returns the target model name of a link field.
func (f *Field) RefTarget() (string, bool) {
	if rt, ok := f.typ.(refType); ok {
		return rt.target, true
	}
	return "", false
}

// FromInput converts user input into this field's typed value. nil becomes
// Null; a Value of the right kind passes through.
func (f *Field) FromInput(v any) (Value, error) {
	if v == nil {
		return Null(), nil
	}
	if val, ok := v.(Value); ok {
		if val.IsNull() {
			return val, nil
		}
		if val.kind == f.typ.kind() {
			if l, ok := val.AsLink(); ok {
				// Re-check the link target against this field's model.
				return f.typ.fromInput(f.name, l)
			}
			return val, nil
		}
		return Value{}, convErrf(f.name, v, nil, "%v value does not fit a %v field", val.kind, f.typ.kind())
	}
	return f.typ.fromInput(f.name, v)
}

// ToStorage renders a typed value into its storage form. Null renders as
// the empty form.
func (f *Field) ToStorage(v Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	return f.typ.toStorage(f.name, v)
}

// FromStorage is the inverse of ToStorage.
func (f *Field) FromStorage(raw []byte) (Value, error) {
	if len(raw) == 0 {
		return f.typ.emptyValue(), nil
	}
	return f.typ.fromStorage(f.name, raw)
}

// indexValueForStored derives the index entry string from a storage form.
func (f *Field) indexValueForStored(raw []byte) string {
	if f.hashed {
		return md5hex(raw)
	}
	return string(raw)
}

func (f *Field) indexValue(v Value) (string, error) {
	raw, err := f.ToStorage(v)
	if err != nil {
		return "", err
	}
	return f.indexValueForStored(raw), nil
}

func fieldModelName(f *Field) string {
	if f.model == nil {
		return ""
	}
	return f.model.name
}

type stringType struct{}

func (stringType) kind() Kind        { return KindString }
func (stringType) canIndex() bool    { return true }
func (stringType) emptyValue() Value { return Str("") }

func (stringType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case string:
		return Str(v), nil
	case []byte:
		return Str(string(v)), nil
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to string", v)
}

func (stringType) toStorage(name string, v Value) ([]byte, error) {
	s, ok := v.AsString()
	if !ok {
		return nil, convErrf(name, v, nil, "not a string value")
	}
	return []byte(s), nil
}

func (stringType) fromStorage(name string, raw []byte) (Value, error) {
	return Str(string(raw)), nil
}

type bytesType struct{}

func (bytesType) kind() Kind        { return KindBytes }
func (bytesType) canIndex() bool    { return false }
func (bytesType) emptyValue() Value { return Bytes(nil) }

func (bytesType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case []byte:
		return Bytes(v), nil
	case string:
		return Bytes([]byte(v)), nil
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to bytes", v)
}

func (bytesType) toStorage(name string, v Value) ([]byte, error) {
	b, ok := v.AsBytes()
	if !ok {
		return nil, convErrf(name, v, nil, "not a bytes value")
	}
	return b, nil
}

func (bytesType) fromStorage(name string, raw []byte) (Value, error) {
	return Bytes(raw), nil
}

type intType struct{}

func (intType) kind() Kind        { return KindInt }
func (intType) canIndex() bool    { return true }
func (intType) emptyValue() Value { return Null() }

func (intType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Int(int64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, convErrf(name, v, nil, "integer overflows int64")
		}
		return Int(int64(v)), nil
	case float64:
		return Int(int64(v)), nil
	case float32:
		return Int(int64(v)), nil
	case string:
		return parseIntInput(name, v)
	case []byte:
		return parseIntInput(name, string(v))
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to int", v)
}

func parseIntInput(name, s string) (Value, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Value{}, convErrf(name, s, err, "invalid integer")
	}
	return Int(i), nil
}

func (intType) toStorage(name string, v Value) ([]byte, error) {
	i, ok := v.AsInt()
	if !ok {
		return nil, convErrf(name, v, nil, "not an int value")
	}
	return strconv.AppendInt(nil, i, 10), nil
}

func (intType) fromStorage(name string, raw []byte) (Value, error) {
	i, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return Value{}, convErrf(name, string(raw), err, "invalid stored integer")
	}
	return Int(i), nil
}

type floatType struct{}

func (floatType) kind() Kind        { return KindFloat }
func (floatType) canIndex() bool    { return false }
func (floatType) emptyValue() Value { return Null() }

func (floatType) fromInput(name string, v any) (Value, error) {
	f, err := floatInput(name, v)
	if err != nil {
		return Value{}, err
	}
	return Float(f), nil
}

func floatInput(name string, v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, convErrf(name, v, err, "invalid float")
		}
		return f, nil
	case []byte:
		return floatInput(name, string(v))
	}
	return 0, convErrf(name, v, nil, "cannot convert %T to float", v)
}

func (floatType) toStorage(name string, v Value) ([]byte, error) {
	f, ok := v.AsFloat()
	if !ok {
		return nil, convErrf(name, v, nil, "not a float value")
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (floatType) fromStorage(name string, raw []byte) (Value, error) {
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return Value{}, convErrf(name, string(raw), err, "invalid stored float")
	}
	return Float(f), nil
}

type boolType struct{}

func (boolType) kind() Kind        { return KindBool }
func (boolType) canIndex() bool    { return true }
func (boolType) emptyValue() Value { return Null() }

func (boolType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case bool:
		return Bool(v), nil
	case string:
		return parseBoolInput(name, v)
	case []byte:
		return parseBoolInput(name, string(v))
	case int:
		return parseBoolInput(name, strconv.Itoa(v))
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to bool", v)
}

func parseBoolInput(name, s string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return Bool(true), nil
	case "false", "0":
		return Bool(false), nil
	}
	return Value{}, convErrf(name, s, nil, "invalid boolean (want true/1/false/0)")
}

func (boolType) toStorage(name string, v Value) ([]byte, error) {
	b, ok := v.AsBool()
	if !ok {
		return nil, convErrf(name, v, nil, "not a bool value")
	}
	if b {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

func (boolType) fromStorage(name string, raw []byte) (Value, error) {
	return parseBoolInput(name, string(raw))
}

type decimalType struct {
	places int
}

func (decimalType) kind() Kind        { return KindFloat }
func (decimalType) canIndex() bool    { return true }
func (decimalType) emptyValue() Value { return Null() }

func (t decimalType) fromInput(name string, v any) (Value, error) {
	f, err := floatInput(name, v)
	if err != nil {
		return Value{}, err
	}
	shift := math.Pow10(t.places)
	return Float(math.Round(f*shift) / shift), nil
}

func (t decimalType) toStorage(name string, v Value) ([]byte, error) {
	f, ok := v.AsFloat()
	if !ok {
		return nil, convErrf(name, v, nil, "not a decimal value")
	}
	return strconv.AppendFloat(nil, f, 'f', t.places, 64), nil
}

func (t decimalType) fromStorage(name string, raw []byte) (Value, error) {
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return Value{}, convErrf(name, string(raw), err, "invalid stored decimal")
	}
	return Float(f), nil
}
