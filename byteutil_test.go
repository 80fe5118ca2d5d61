package indexedredis

import (
	"reflect"
	"testing"
)

func TestBytesBuilder(t *testing.T) {
	var bb bytesBuilder
	_, _ = bb.Write([]byte{1, 2, 3})
	_ = bb.WriteByte(4)
	_, _ = bb.Write(nil)
	if !reflect.DeepEqual(bb.Buf, []byte{1, 2, 3, 4}) {
		t.Fatalf("bb.Buf = %x, wanted 01020304", bb.Buf)
	}

	big := make([]byte, 100)
	_, _ = bb.Write(big)
	deepEqual(t, len(bb.Buf), 104)
	if cap(bb.Buf) < 104 {
		t.Fatalf("cap(bb.Buf) = %d, wanted >= 104", cap(bb.Buf))
	}
}

func TestAppendHelpers(t *testing.T) {
	src := []byte{0xAA, 0xBB, 0xCC}
	buf := appendRaw(nil, src)
	if !reflect.DeepEqual(buf, src) {
		t.Fatalf("appendRaw = %x, wanted %x", buf, src)
	}

	buf = ensureCapacity(buf, 40)
	if cap(buf) < 40 || !reflect.DeepEqual(buf, src) {
		t.Fatalf("ensureCapacity = %x cap %d, wanted %x cap >= 40", buf, cap(buf), src)
	}

	off, buf := grow(buf, 2)
	deepEqual(t, off, 3)
	deepEqual(t, len(buf), 5)
}

func TestIDKeys(t *testing.T) {
	deepEqual(t, idKey(1), x("00 00 00 00 00 00 00 01"))
	deepEqual(t, idKey(0x0102030405060708), x("01 02 03 04 05 06 07 08"))
	deepEqual(t, keyID(x("00 00 00 00 00 00 01 00")), ID(256))
	deepEqual(t, keyID(idKey(42)), ID(42))
}

func TestIndexEntryKeys(t *testing.T) {
	deepEqual(t, indexEntryKey("ab", 1), x("61 62 00 00 00 00 00 00 00 00 01"))
	deepEqual(t, indexEntryKey("", 2), x("00 00 00 00 00 00 00 00 02"))
	deepEqual(t, indexEntryPrefix("ab"), x("61 62 00"))
	deepEqual(t, indexEntryPrefix(""), x("00"))

	// A value containing the separator byte yields a longer key than the
	// shorter value's prefix plus an id, which is what exact-match scans
	// check for.
	long := indexEntryKey("a\x00b", 1)
	prefix := indexEntryPrefix("a")
	deepEqual(t, len(long) != len(prefix)+8, true)
}
