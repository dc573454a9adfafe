package compact

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Reader indexes a buffer holding one event's worth of serialized bytes per
// slot (typically handed individual events already extracted by the record
// framing codec) and exposes their scanned node vectors on demand, useful
// when only routing is needed or events will be forwarded unparsed.
type Reader struct {
	buf    *buffer.ByteBuffer
	events []int // byte offsets of each event within buf
}

// NewReader indexes buf, treating offsets as the start of each event. The
// caller (typically the record/block reader) already knows event
// boundaries from the index array, so this does not re-derive them.
func NewReader(buf *buffer.ByteBuffer, eventOffsets []int) *Reader {
	return &Reader{buf: buf, events: eventOffsets}
}

// EventCount returns the number of indexed events.
func (r *Reader) EventCount() int { return len(r.events) }

// GetScannedEvent returns the root node (index 0) and the full flat node
// vector for the i-th event (0-based).
func (r *Reader) GetScannedEvent(i int) (Node, []Node, error) {
	if i < 0 || i >= len(r.events) {
		return Node{}, nil, fmt.Errorf("%w: event %d", xerr.ErrEventIndexOutOfRange, i)
	}
	view := r.buf.Duplicate()
	view.SetPosition(r.events[i])
	nodes, err := Scan(view)
	if err != nil {
		return Node{}, nil, err
	}
	return nodes[0], nodes, nil
}
