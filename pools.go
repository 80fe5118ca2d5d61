package indexedredis

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var compressBufPool = &sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func releaseCompressBuf(buf *bytes.Buffer) {
	buf.Reset()
	compressBufPool.Put(buf)
}

var zlibWriterPool = &sync.Pool{
	New: func() any {
		return must(zlib.NewWriterLevel(io.Discard, zlib.BestCompression))
	},
}

var lz4WriterPool = &sync.Pool{
	New: func() any {
		return lz4.NewWriter(io.Discard)
	},
}

// zstd encoders and decoders are expensive to build; EncodeAll/DecodeAll on
// shared instances are safe for concurrent use.
var (
	zstdEncoder = must(zstd.NewWriter(nil))
	zstdDecoder = must(zstd.NewReader(nil))
)
