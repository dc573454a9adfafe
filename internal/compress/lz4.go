package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse; the
// lz4.Compressor carries internal hash-table state that benefits from it.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// lz4Codec implements header.CompressLZ4: fast block compression tuned for
// decompression speed over ratio.
type lz4Codec struct{}

func (lz4Codec) Compress(in []byte) ([]byte, error) {
	if len(in) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(in)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(in, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(in []byte, expectedLen int) ([]byte, error) {
	if len(in) == 0 {
		return nil, nil
	}
	bufSize := expectedLen
	if bufSize <= 0 {
		bufSize = len(in) * 4
	}
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		dst := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(in, dst)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}
			return nil, err
		}
		return dst[:n], nil
	}
	return nil, lz4.ErrInvalidSourceShortBuffer
}
