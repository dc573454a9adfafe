// Package buffer implements the positioned, length-bounded, endian-aware
// byte span that every other evio package reads and writes through.
package buffer

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// ByteBuffer is a cursor over a fixed-capacity byte region with an
// associated byte order. It mirrors java.nio.ByteBuffer's position/limit
// model: relative reads and writes advance pos, absolute reads and writes
// leave it untouched. Byte order is a property of the buffer, not of any
// value stored in it — callers that need a node's own order propagate it
// explicitly, as spec'd in the data model.
type ByteBuffer struct {
	data     []byte
	pos      int
	limit    int
	order    binary.ByteOrder
	readOnly bool
}

// New wraps an existing slice. The buffer's limit starts at len(data) and
// its order defaults to little-endian, matching the EVIO on-disk default.
func New(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data, limit: len(data), order: binary.LittleEndian}
}

// Allocate creates a new buffer of the given capacity, fully writable.
func Allocate(capacity int) *ByteBuffer {
	return New(make([]byte, capacity))
}

// Wrap is an alias of New kept for readers used to the java.nio naming.
func Wrap(data []byte) *ByteBuffer { return New(data) }

// Order returns the buffer's current byte order.
func (b *ByteBuffer) Order() binary.ByteOrder { return b.order }

// SetOrder changes the byte order used by subsequent get/put calls.
func (b *ByteBuffer) SetOrder(order binary.ByteOrder) *ByteBuffer {
	b.order = order
	return b
}

// Position returns the current cursor position.
func (b *ByteBuffer) Position() int { return b.pos }

// SetPosition moves the cursor to an absolute offset.
func (b *ByteBuffer) SetPosition(pos int) *ByteBuffer {
	b.pos = pos
	return b
}

// Limit returns the current limit (exclusive upper bound for relative ops).
func (b *ByteBuffer) Limit() int { return b.limit }

// SetLimit changes the limit.
func (b *ByteBuffer) SetLimit(limit int) *ByteBuffer {
	b.limit = limit
	if b.pos > limit {
		b.pos = limit
	}
	return b
}

// Capacity returns the size of the backing array.
func (b *ByteBuffer) Capacity() int { return len(b.data) }

// Remaining returns the number of bytes between pos and limit.
func (b *ByteBuffer) Remaining() int { return b.limit - b.pos }

// Bytes returns the backing slice in full, regardless of position/limit.
func (b *ByteBuffer) Bytes() []byte { return b.data }

// Flip sets limit to the current position and resets position to zero,
// preparing a just-filled buffer for relative reads.
func (b *ByteBuffer) Flip() *ByteBuffer {
	b.limit = b.pos
	b.pos = 0
	return b
}

// Rewind resets position to zero without touching the limit.
func (b *ByteBuffer) Rewind() *ByteBuffer {
	b.pos = 0
	return b
}

// Clear resets position to zero and limit to capacity.
func (b *ByteBuffer) Clear() *ByteBuffer {
	b.pos = 0
	b.limit = len(b.data)
	return b
}

// Duplicate returns a new ByteBuffer sharing the same backing array and
// order but with an independent position/limit.
func (b *ByteBuffer) Duplicate() *ByteBuffer {
	return &ByteBuffer{data: b.data, pos: b.pos, limit: b.limit, order: b.order}
}

// Slice returns a new buffer over data[pos:limit], position reset to zero,
// sharing the backing array.
func (b *ByteBuffer) Slice() *ByteBuffer {
	return &ByteBuffer{data: b.data[b.pos:b.limit], limit: b.limit - b.pos, order: b.order}
}

// AsReadOnly returns a duplicate whose Put* methods always fail. The
// returned buffer shares backing storage, so mutations through the
// original are still visible through reads on the read-only view.
func (b *ByteBuffer) AsReadOnly() *ByteBuffer {
	dup := b.Duplicate()
	dup.readOnly = true
	return dup
}

func (b *ByteBuffer) checkBounds(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(b.data) {
		return fmt.Errorf("%w: offset=%d len=%d capacity=%d", xerr.ErrIO, offset, n, len(b.data))
	}
	return nil
}

func (b *ByteBuffer) checkWritable() error {
	if b.readOnly {
		return fmt.Errorf("%w: buffer is read-only", xerr.ErrIO)
	}
	return nil
}
