package indexedredis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotSaved is returned by operations that require the record to have been
// saved at least once (reload, delete).
var ErrNotSaved = errors.New("record has never been saved")

// SchemaError reports an invalid model declaration or an operation that
// does not fit the declared schema. Declaration-time violations panic with
// a SchemaError; usage-time violations return one.
type SchemaError struct {
	Model string
	Field string
	Msg   string
}

func schemaErrf(model, field, format string, args ...any) *SchemaError {
	return &SchemaError{model, field, fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	var buf strings.Builder
	buf.WriteString("schema: ")
	if e.Model != "" {
		buf.WriteString(e.Model)
	}
	if e.Field != "" {
		if e.Model != "" {
			buf.WriteByte('.')
		}
		buf.WriteString(e.Field)
	}
	if e.Model != "" || e.Field != "" {
		buf.WriteString(": ")
	}
	buf.WriteString(e.Msg)
	return buf.String()
}

// ConversionError reports input that cannot be converted to a field's typed
// value, or stored bytes that cannot be decoded back.
type ConversionError struct {
	Field string
	Input any
	Msg   string
	Err   error
}

func convErrf(field string, input any, err error, format string, args ...any) error {
	return &ConversionError{field, input, fmt.Sprintf(format, args...), err}
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: %s: %v: input %.64v", e.Field, e.Msg, e.Err, e.Input)
	}
	return fmt.Sprintf("field %s: %s: input %.64v", e.Field, e.Msg, e.Input)
}

// IntegrityError reports a referential integrity violation, such as a
// non-cascading save of a record whose resolved link target was never saved.
type IntegrityError struct {
	Model string
	Field string
	Msg   string
}

func (e *IntegrityError) Error() string {
	var buf strings.Builder
	buf.WriteString("integrity: ")
	if e.Model != "" {
		buf.WriteString(e.Model)
		if e.Field != "" {
			buf.WriteByte('.')
			buf.WriteString(e.Field)
		}
		buf.WriteString(": ")
	}
	buf.WriteString(e.Msg)
	return buf.String()
}

// NotFoundError reports a record that an operation required to exist.
type NotFoundError struct {
	Model string
	ID    ID
}

func (e *NotFoundError) Error() string {
	return e.Model + "/" + strconv.FormatUint(uint64(e.ID), 10) + ": not found"
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op    string
	Model string
	ID    ID
	Err   error
}

func storErrf(op, model string, id ID, err error) error {
	return &StorageError{op, model, id, err}
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Error() string {
	var buf strings.Builder
	buf.WriteString("store: ")
	buf.WriteString(e.Op)
	if e.Model != "" {
		buf.WriteByte(' ')
		buf.WriteString(e.Model)
		if e.ID != 0 {
			buf.WriteByte('/')
			buf.WriteString(strconv.FormatUint(uint64(e.ID), 10))
		}
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// DataError reports stored bytes that could not be decoded.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
