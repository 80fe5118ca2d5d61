package indexedredis

import (
	"errors"
	"testing"
)

func TestStringFieldConversion(t *testing.T) {
	f := StringField("name")
	deepEqual(t, must(f.FromInput("foo")), Str("foo"))
	deepEqual(t, must(f.FromInput([]byte("bar"))), Str("bar"))
	_, err := f.FromInput(42)
	wanterr(t, err)

	deepEqual(t, must(f.ToStorage(Str("foo"))), []byte("foo"))
	deepEqual(t, must(f.FromStorage([]byte("foo"))), Str("foo"))

	// The empty form comes back as the empty string, not null.
	deepEqual(t, must(f.ToStorage(Null())), []byte(nil))
	deepEqual(t, must(f.FromStorage(nil)), Str(""))
	deepEqual(t, must(f.FromStorage([]byte{})), Str(""))
}

func TestIntFieldConversion(t *testing.T) {
	f := IntField("age")
	deepEqual(t, must(f.FromInput(42)), Int(42))
	deepEqual(t, must(f.FromInput(int64(-9))), Int(-9))
	deepEqual(t, must(f.FromInput(uint32(7))), Int(7))
	deepEqual(t, must(f.FromInput("42")), Int(42))
	deepEqual(t, must(f.FromInput(" 42 ")), Int(42))
	deepEqual(t, must(f.FromInput([]byte("-3"))), Int(-3))
	deepEqual(t, must(f.FromInput(3.9)), Int(3))

	_, err := f.FromInput("4x")
	wanterr(t, err)
	var ce *ConversionError
	if !errors.As(err, &ce) || ce.Field != "age" {
		t.Errorf("** got %v, wanted *ConversionError for age", err)
	}
	_, err = f.FromInput(uint64(1) << 63)
	wanterr(t, err)

	deepEqual(t, must(f.ToStorage(Int(-7))), []byte("-7"))
	deepEqual(t, must(f.FromStorage([]byte("12"))), Int(12))
	deepEqual(t, must(f.FromStorage(nil)), Null())
	_, err = f.FromStorage([]byte("abc"))
	wanterr(t, err)
}

func TestBoolFieldConversion(t *testing.T) {
	f := BoolField("active")
	deepEqual(t, must(f.FromInput(true)), Bool(true))
	deepEqual(t, must(f.FromInput("true")), Bool(true))
	deepEqual(t, must(f.FromInput("TRUE")), Bool(true))
	deepEqual(t, must(f.FromInput(" 1 ")), Bool(true))
	deepEqual(t, must(f.FromInput("false")), Bool(false))
	deepEqual(t, must(f.FromInput("False")), Bool(false))
	deepEqual(t, must(f.FromInput("0")), Bool(false))
	deepEqual(t, must(f.FromInput([]byte("1"))), Bool(true))
	deepEqual(t, must(f.FromInput(1)), Bool(true))
	deepEqual(t, must(f.FromInput(0)), Bool(false))

	_, err := f.FromInput("yes")
	wanterr(t, err)
	_, err = f.FromInput("2")
	wanterr(t, err)

	deepEqual(t, must(f.ToStorage(Bool(true))), []byte("true"))
	deepEqual(t, must(f.ToStorage(Bool(false))), []byte("false"))
	deepEqual(t, must(f.FromStorage([]byte("true"))), Bool(true))
	deepEqual(t, must(f.FromStorage(nil)), Null())
}

func TestFloatFieldConversion(t *testing.T) {
	f := FloatField("score")
	deepEqual(t, must(f.FromInput(1.5)), Float(1.5))
	deepEqual(t, must(f.FromInput("2.25")), Float(2.25))
	deepEqual(t, must(f.FromInput(3)), Float(3))
	_, err := f.FromInput("x")
	wanterr(t, err)

	deepEqual(t, must(f.ToStorage(Float(1.5))), []byte("1.5"))
	deepEqual(t, must(f.FromStorage([]byte("1.5"))), Float(1.5))
	deepEqual(t, must(f.FromStorage(nil)), Null())
	deepEqual(t, f.CanIndex(), false)
}

func TestDecimalFieldConversion(t *testing.T) {
	f := DecimalField("balance", 2)
	deepEqual(t, f.CanIndex(), true)
	deepEqual(t, must(f.FromInput(3.456)), Float(3.46))
	deepEqual(t, must(f.FromInput(5)), Float(5))
	deepEqual(t, must(f.FromInput("2.125")), Float(2.13))

	deepEqual(t, must(f.ToStorage(Float(3.46))), []byte("3.46"))
	deepEqual(t, must(f.ToStorage(Float(5))), []byte("5.00"))
	deepEqual(t, must(f.FromStorage([]byte("3.46"))), Float(3.46))
	deepEqual(t, must(f.FromStorage(nil)), Null())

	mustPanic(t, func() { DecimalField("bad", -1) })
}

func TestFieldInputPassthrough(t *testing.T) {
	f := IntField("age")
	deepEqual(t, must(f.FromInput(nil)), Null())
	deepEqual(t, must(f.FromInput(Null())), Null())
	deepEqual(t, must(f.FromInput(Int(4))), Int(4))
	_, err := f.FromInput(Str("4"))
	wanterr(t, err)
}

func TestHashedIndexValues(t *testing.T) {
	plain := StringField("email")
	deepEqual(t, plain.indexValueForStored([]byte("foo@example.com")), "foo@example.com")

	hashed := StringField("email").Hashed()
	deepEqual(t, hashed.indexValueForStored([]byte("foo@example.com")), "b48def645758b95537d4424c84d1a9ff")
	deepEqual(t, must(hashed.indexValue(Str("foo@example.com"))), "b48def645758b95537d4424c84d1a9ff")
}

func TestHashedPanicsOnNonIndexable(t *testing.T) {
	mustPanic(t, func() { FloatField("score").Hashed() })
	mustPanic(t, func() { BytesField("avatar").Hashed() })
	mustPanic(t, func() { OpaqueField("prefs").Hashed() })
}
