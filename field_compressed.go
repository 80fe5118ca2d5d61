package indexedredis

import (
	"bytes"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

type compressMode int

const (
	compressZlib compressMode = iota
	compressZstd
	compressLZ4
)

func compressModeNamed(name string) (compressMode, bool) {
	switch strings.ToLower(name) {
	case "zlib", "gz", "gzip":
		return compressZlib, true
	case "zstd":
		return compressZstd, true
	case "lz4":
		return compressLZ4, true
	}
	return 0, false
}

func (m compressMode) String() string {
	switch m {
	case compressZlib:
		return "zlib"
	case compressZstd:
		return "zstd"
	case compressLZ4:
		return "lz4"
	default:
		return "invalid"
	}
}

var (
	zlibMagic = []byte{0x78, 0xDA} // zlib header at BestCompression
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (m compressMode) magic() []byte {
	switch m {
	case compressZlib:
		return zlibMagic
	case compressZstd:
		return zstdMagic
	case compressLZ4:
		return lz4Magic
	default:
		return nil
	}
}

// CompressedField holds a byte string stored compressed. Supported modes:
// "zlib" (aliases "gz", "gzip"), "zstd" and "lz4".
//
// Input that already carries the mode's magic header is stored untouched,
// and stored bytes are only decompressed when they carry the header, so
// data written out-of-band passes through raw. Indexes over a compressed
// field always hash the stored form.
func CompressedField(name, mode string) *Field {
	m, ok := compressModeNamed(mode)
	if !ok {
		panic(schemaErrf("", name, "unknown compression mode %q", mode))
	}
	f := newField(name, compressedType{m})
	f.hashed = true
	return f
}

type compressedType struct {
	mode compressMode
}

func (compressedType) kind() Kind        { return KindBytes }
func (compressedType) canIndex() bool    { return true }
func (compressedType) emptyValue() Value { return Bytes(nil) }

func (t compressedType) fromInput(name string, v any) (Value, error) {
	switch v := v.(type) {
	case []byte:
		return Bytes(v), nil
	case string:
		return Bytes([]byte(v)), nil
	}
	return Value{}, convErrf(name, v, nil, "cannot convert %T to bytes", v)
}

func (t compressedType) toStorage(name string, v Value) ([]byte, error) {
	b, ok := v.AsBytes()
	if !ok {
		return nil, convErrf(name, v, nil, "not a bytes value")
	}
	if len(b) == 0 {
		return nil, nil
	}
	if bytes.HasPrefix(b, t.mode.magic()) {
		return b, nil
	}
	out, err := compressPayload(t.mode, b)
	if err != nil {
		return nil, convErrf(name, v, err, "%v compression failed", t.mode)
	}
	return out, nil
}

func (t compressedType) fromStorage(name string, raw []byte) (Value, error) {
	if !bytes.HasPrefix(raw, t.mode.magic()) {
		return Bytes(raw), nil
	}
	out, err := decompressPayload(t.mode, raw)
	if err != nil {
		return Value{}, convErrf(name, raw, err, "corrupted %v data", t.mode)
	}
	return Bytes(out), nil
}

func compressPayload(m compressMode, data []byte) ([]byte, error) {
	switch m {
	case compressZlib:
		buf := compressBufPool.Get().(*bytes.Buffer)
		defer releaseCompressBuf(buf)
		zw := zlibWriterPool.Get().(*zlib.Writer)
		zw.Reset(buf)
		_, err := zw.Write(data)
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		zlibWriterPool.Put(zw)
		if err != nil {
			return nil, err
		}
		return slices.Clone(buf.Bytes()), nil

	case compressZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case compressLZ4:
		buf := compressBufPool.Get().(*bytes.Buffer)
		defer releaseCompressBuf(buf)
		lw := lz4WriterPool.Get().(*lz4.Writer)
		lw.Reset(buf)
		_, err := lw.Write(data)
		if cerr := lw.Close(); err == nil {
			err = cerr
		}
		lz4WriterPool.Put(lw)
		if err != nil {
			return nil, err
		}
		return slices.Clone(buf.Bytes()), nil

	default:
		panic("unsupported compression mode")
	}
}

func decompressPayload(m compressMode, raw []byte) ([]byte, error) {
	switch m {
	case compressZlib:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case compressZstd:
		return zstdDecoder.DecodeAll(raw, nil)

	case compressLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))

	default:
		panic("unsupported compression mode")
	}
}
