// Package compress is the uniform (span, kind) -> span facade over the
// pluggable bulk codecs the record framing codec invokes. The core only
// orchestrates these calls; it never implements compression itself.
package compress

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Codec is a bulk (de)compressor for one header.CompressionType.
type Codec interface {
	Compress(in []byte) ([]byte, error)
	Decompress(in []byte, expectedLen int) ([]byte, error)
}

var codecs = map[header.CompressionType]Codec{
	header.CompressNone:    noopCodec{},
	header.CompressLZ4:     lz4Codec{},
	header.CompressLZ4Best: lz4BestCodec{},
	header.CompressGzip:    gzipCodec{},
}

// Compress runs kind's codec over in, returning the compressed span. For
// kind=CompressNone the input span is returned unchanged, aliasing the
// caller's backing array.
func Compress(kind header.CompressionType, in []byte) ([]byte, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: compression type %d", xerr.ErrUnsupportedCompress, kind)
	}
	out, err := c.Compress(in)
	if err != nil {
		return nil, xerr.Wrap(fmt.Sprintf("compress (kind=%d)", kind), err)
	}
	return out, nil
}

// Decompress runs kind's codec over in, returning the uncompressed span.
// expectedLen sizes the output buffer where the codec needs it (LZ4 block
// decompression needs a destination buffer of known/bounded capacity).
func Decompress(kind header.CompressionType, in []byte, expectedLen int) ([]byte, error) {
	c, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: compression type %d", xerr.ErrUnsupportedCompress, kind)
	}
	out, err := c.Decompress(in, expectedLen)
	if err != nil {
		return nil, xerr.Wrap(fmt.Sprintf("decompress (kind=%d)", kind), err)
	}
	return out, nil
}
