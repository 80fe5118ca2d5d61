package indexedredis

import (
	"bytes"
	"strings"
	"testing"
)

func TestZlibFieldRoundTrip(t *testing.T) {
	f := CompressedField("body", "zlib")
	payload := []byte("\x01Hello World\x01")

	raw := must(f.ToStorage(Bytes(payload)))
	if !bytes.HasPrefix(raw, x("78 DA")) {
		t.Fatalf("** stored bytes don't start with the zlib header: %x", raw)
	}
	deepEqual(t, must(f.FromStorage(raw)), Bytes(payload))

	// Input already carrying the header is stored untouched.
	deepEqual(t, must(f.ToStorage(Bytes(raw))), raw)

	// Stored bytes without the header pass through raw.
	deepEqual(t, must(f.FromStorage([]byte("plain"))), Bytes([]byte("plain")))

	// A valid header over a garbage stream is corrupted data.
	_, err := f.FromStorage(x("78 DA FF 00 11 22"))
	wanterr(t, err)

	deepEqual(t, must(f.ToStorage(Bytes(nil))), []byte(nil))
	deepEqual(t, must(f.FromStorage(nil)), Bytes(nil))
}

func TestZstdFieldRoundTrip(t *testing.T) {
	f := CompressedField("body", "zstd")
	payload := []byte(strings.Repeat("zstandard ", 100))

	raw := must(f.ToStorage(Bytes(payload)))
	if !bytes.HasPrefix(raw, x("28 B5 2F FD")) {
		t.Fatalf("** stored bytes don't start with the zstd header: %x", raw)
	}
	if len(raw) >= len(payload) {
		t.Errorf("** compression did not shrink %d bytes (got %d)", len(payload), len(raw))
	}
	deepEqual(t, must(f.FromStorage(raw)), Bytes(payload))
	deepEqual(t, must(f.ToStorage(Bytes(raw))), raw)
	deepEqual(t, must(f.FromStorage([]byte("plain"))), Bytes([]byte("plain")))
}

func TestLZ4FieldRoundTrip(t *testing.T) {
	f := CompressedField("body", "lz4")
	payload := []byte(strings.Repeat("lz4 frame ", 100))

	raw := must(f.ToStorage(Bytes(payload)))
	if !bytes.HasPrefix(raw, x("04 22 4D 18")) {
		t.Fatalf("** stored bytes don't start with the lz4 header: %x", raw)
	}
	deepEqual(t, must(f.FromStorage(raw)), Bytes(payload))
	deepEqual(t, must(f.ToStorage(Bytes(raw))), raw)
	deepEqual(t, must(f.FromStorage([]byte("plain"))), Bytes([]byte("plain")))
}

func TestCompressionModeNames(t *testing.T) {
	for _, name := range []string{"zlib", "gz", "gzip", "ZLIB"} {
		m, ok := compressModeNamed(name)
		deepEqual(t, ok, true)
		deepEqual(t, m, compressZlib)
	}
	m, ok := compressModeNamed("zstd")
	deepEqual(t, ok, true)
	deepEqual(t, m, compressZstd)
	m, ok = compressModeNamed("lz4")
	deepEqual(t, ok, true)
	deepEqual(t, m, compressLZ4)
	_, ok = compressModeNamed("bzip2")
	deepEqual(t, ok, false)

	mustPanic(t, func() { CompressedField("body", "bzip2") })
}

func TestCompressedFieldsIndexHashed(t *testing.T) {
	f := CompressedField("body", "zlib")
	deepEqual(t, f.CanIndex(), true)
	raw := must(f.ToStorage(Bytes([]byte("payload payload payload"))))
	iv := f.indexValueForStored(raw)
	if !isHexDigest(iv) {
		t.Errorf("** index value %q is not an md5 digest", iv)
	}
}
