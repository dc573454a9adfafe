// Package compact implements the compact builder (§4.E2) and the compact
// reader/node (§4.J): both operate directly on a buffer.ByteBuffer without
// materializing tree.Node objects, trading the object builder's allocations
// for in-place patching of length fields.
package compact

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

type frame struct {
	headerStart int // byte offset of the frame's own header
	kind        dtype.Kind
}

// Builder streams a tree directly into a backing buffer.ByteBuffer. Each
// OpenXxx call writes a placeholder header and pushes a frame recording
// where it started; CloseStructure patches that placeholder once the
// child payload bytes are known.
type Builder struct {
	buf   *buffer.ByteBuffer
	stack []frame
}

// NewBuilder wraps buf for compact emission. buf's position is the point
// writing begins; its order governs every header and payload word.
func NewBuilder(buf *buffer.ByteBuffer) *Builder {
	return &Builder{buf: buf}
}

// Buffer returns the backing buffer.
func (b *Builder) Buffer() *buffer.ByteBuffer { return b.buf }

// OpenBank writes a placeholder bank header (length field patched at
// CloseStructure/CloseAll) and pushes a frame.
func (b *Builder) OpenBank(tag uint16, num uint8, payloadType dtype.Type) error {
	start := b.buf.Position()
	h := header.BankHeader{LengthWords: 0, Tag: tag, PayloadType: payloadType, Num: num}
	w0, w1 := h.Encode()
	if err := b.buf.PutUint32(w0); err != nil {
		return err
	}
	if err := b.buf.PutUint32(w1); err != nil {
		return err
	}
	b.stack = append(b.stack, frame{headerStart: start, kind: dtype.KindBank})
	return nil
}

// OpenSegment writes a placeholder segment header and pushes a frame.
func (b *Builder) OpenSegment(tag uint16, payloadType dtype.Type) error {
	start := b.buf.Position()
	h := header.SegmentHeader{Tag: uint8(tag), PayloadType: payloadType, LengthWords: 0}
	if err := b.buf.PutUint32(h.Encode()); err != nil {
		return err
	}
	b.stack = append(b.stack, frame{headerStart: start, kind: dtype.KindSegment})
	return nil
}

// OpenTagsegment writes a placeholder tagsegment header and pushes a frame.
func (b *Builder) OpenTagsegment(tag uint16, payloadType dtype.Type) error {
	start := b.buf.Position()
	h := header.TagsegmentHeader{Tag: tag, PayloadType: payloadType, LengthWords: 0}
	if err := b.buf.PutUint32(h.Encode()); err != nil {
		return err
	}
	b.stack = append(b.stack, frame{headerStart: start, kind: dtype.KindTagsegment})
	return nil
}

func headerWords(k dtype.Kind) int {
	if k == dtype.KindBank {
		return 2
	}
	return 1
}

// CloseStructure patches the length field of the innermost open frame with
// the byte delta written since its header start, converted to 32-bit words
// minus the header's own word count, then pops the frame.
func (b *Builder) CloseStructure() error {
	if len(b.stack) == 0 {
		return fmt.Errorf("%w: no open frame to close", xerr.ErrStackUnderflow)
	}
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return b.patch(f)
}

func (b *Builder) patch(f frame) error {
	hw := headerWords(f.kind)
	totalBytes := b.buf.Position() - f.headerStart
	totalWords := totalBytes / 4
	if totalBytes%4 != 0 {
		return fmt.Errorf("%w: frame ends at non-word-aligned offset", xerr.ErrMalformedHeader)
	}
	bodyWords := uint32(totalWords - hw)

	switch f.kind {
	case dtype.KindBank:
		if err := b.buf.PutUint32At(f.headerStart, bodyWords+1); err != nil { // word0 = total-1
			return err
		}
	case dtype.KindSegment:
		w, err := b.buf.GetUint32At(f.headerStart)
		if err != nil {
			return err
		}
		w = (w &^ 0xffff) | (bodyWords & 0xffff)
		if err := b.buf.PutUint32At(f.headerStart, w); err != nil {
			return err
		}
	case dtype.KindTagsegment:
		w, err := b.buf.GetUint32At(f.headerStart)
		if err != nil {
			return err
		}
		w = (w &^ 0xffff) | (bodyWords & 0xffff)
		if err := b.buf.PutUint32At(f.headerStart, w); err != nil {
			return err
		}
	}
	return nil
}

// CloseAll patches every still-open frame, outermost last, and leaves the
// frame stack empty. Invariant: each patched length equals the byte delta
// since its header start minus the header size, in 32-bit words.
func (b *Builder) CloseAll() error {
	for len(b.stack) > 0 {
		if err := b.CloseStructure(); err != nil {
			return err
		}
	}
	return nil
}

// OpenFrames returns the number of currently open (unpatched) frames.
func (b *Builder) OpenFrames() int { return len(b.stack) }
