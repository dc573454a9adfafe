// Package bufpool pools scratch byte slices used during header parsing and
// decompression, the same role utils.GetBuffer/ReleaseBuffer play for the
// HDF5 parser this library's framing codec is adapted from. Unlike that
// single generic pool, EVIO's scratch reads are dominated by a handful of
// fixed sizes (record/file/block header widths), so buffers are bucketed by
// exact size rather than grown by capacity-doubling: a bucket's New always
// yields a buffer that already fits its callers exactly.
package bufpool

import "sync"

var pools sync.Map // size (int) -> *sync.Pool

func poolFor(size int) *sync.Pool {
	if p, ok := pools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{
		New: func() interface{} {
			return make([]byte, size)
		},
	}
	actual, _ := pools.LoadOrStore(size, p)
	return actual.(*sync.Pool)
}

// Get returns a byte slice of exactly size bytes, reused from the bucket
// for that size when one is available.
func Get(size int) []byte {
	return poolFor(size).Get().([]byte)
}

// Release returns buf to the bucket matching its length for reuse. Callers
// must not resize buf (append beyond cap, or reslice to a different length)
// before releasing it.
func Release(buf []byte) {
	poolFor(len(buf)).Put(buf) //nolint:staticcheck // reused as-is, no descriptor reslice needed
}
