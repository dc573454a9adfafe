package tree

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Encode serializes the event rooted at n (which must be a bank) into a
// standalone byte buffer, normalizing lengths first if they are stale.
func Encode(n *Node, order binary.ByteOrder) ([]byte, error) {
	if n.Kind != dtype.KindBank {
		return nil, fmt.Errorf("%w: event root must be a bank, got %s", xerr.ErrTypeMismatch, n.Kind)
	}
	if !n.UpToDate() {
		if _, err := n.Normalize(); err != nil {
			return nil, err
		}
	}
	total, err := n.Normalize()
	if err != nil {
		return nil, err
	}

	buf := buffer.Allocate(int(total) * 4).SetOrder(order)
	if err := writeNode(buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *buffer.ByteBuffer, n *Node) error {
	switch n.Kind {
	case dtype.KindBank:
		return writeBank(buf, n)
	case dtype.KindSegment:
		return writeSegment(buf, n)
	default:
		return writeTagsegment(buf, n)
	}
}

func writeBank(buf *buffer.ByteBuffer, n *Node) error {
	bodyWords, _, err := subtreeWords(n)
	if err != nil {
		return err
	}
	h := header.BankHeader{LengthWords: bodyWords + 1, Tag: n.Tag, Padding: n.Padding, PayloadType: n.PayloadType, Num: n.Num}
	w0, w1 := h.Encode()
	if err := buf.PutUint32(w0); err != nil {
		return err
	}
	if err := buf.PutUint32(w1); err != nil {
		return err
	}
	return writeBody(buf, n)
}

func writeSegment(buf *buffer.ByteBuffer, n *Node) error {
	bodyWords, _, err := subtreeWords(n)
	if err != nil {
		return err
	}
	h := header.SegmentHeader{Tag: uint8(n.Tag), Padding: n.Padding, PayloadType: n.PayloadType, LengthWords: uint16(bodyWords)}
	if err := buf.PutUint32(h.Encode()); err != nil {
		return err
	}
	return writeBody(buf, n)
}

func writeTagsegment(buf *buffer.ByteBuffer, n *Node) error {
	bodyWords, _, err := subtreeWords(n)
	if err != nil {
		return err
	}
	h := header.TagsegmentHeader{Tag: n.Tag, PayloadType: n.PayloadType, LengthWords: uint16(bodyWords)}
	if err := buf.PutUint32(h.Encode()); err != nil {
		return err
	}
	return writeBody(buf, n)
}

// subtreeWords returns the body length in words (excluding n's own header).
func subtreeWords(n *Node) (uint32, uint32, error) {
	total, err := n.Normalize()
	if err != nil {
		return 0, 0, err
	}
	return total - n.headerWords(), total, nil
}

func writeBody(buf *buffer.ByteBuffer, n *Node) error {
	if n.IsContainer() {
		for _, child := range n.Children {
			if err := writeNode(buf, child); err != nil {
				return err
			}
		}
		return nil
	}
	return writeLeafData(buf, n)
}

func writeLeafData(buf *buffer.ByteBuffer, n *Node) error {
	switch n.PayloadType {
	case dtype.Int8:
		for _, v := range n.Data.Int8 {
			if err := buf.PutByte(byte(v)); err != nil {
				return err
			}
		}
	case dtype.Uint8:
		if err := buf.PutBytes(n.Data.Uint8); err != nil {
			return err
		}
	case dtype.Int16:
		for _, v := range n.Data.Int16 {
			if err := buf.PutUint16(uint16(v)); err != nil {
				return err
			}
		}
	case dtype.Uint16:
		for _, v := range n.Data.Uint16 {
			if err := buf.PutUint16(v); err != nil {
				return err
			}
		}
	case dtype.Int32:
		for _, v := range n.Data.Int32 {
			if err := buf.PutUint32(uint32(v)); err != nil {
				return err
			}
		}
	case dtype.Uint32:
		for _, v := range n.Data.Uint32 {
			if err := buf.PutUint32(v); err != nil {
				return err
			}
		}
	case dtype.Int64:
		for _, v := range n.Data.Int64 {
			if err := buf.PutUint64(uint64(v)); err != nil {
				return err
			}
		}
	case dtype.Uint64:
		for _, v := range n.Data.Uint64 {
			if err := buf.PutUint64(v); err != nil {
				return err
			}
		}
	case dtype.Float32:
		for _, v := range n.Data.Float32 {
			if err := buf.PutFloat32(v); err != nil {
				return err
			}
		}
	case dtype.Float64:
		for _, v := range n.Data.Float64 {
			if err := buf.PutFloat64(v); err != nil {
				return err
			}
		}
	case dtype.CharStar8:
		if err := writeEncodedStrings(buf, n.Data.Strings); err != nil {
			return err
		}
	case dtype.Composite:
		if err := buf.PutBytes(n.Data.Composite); err != nil {
			return err
		}
	default:
		for _, w := range n.Data.Raw {
			if err := buf.PutUint32(w); err != nil {
				return err
			}
		}
	}
	for i := uint8(0); i < n.Padding; i++ {
		pad := byte(0)
		if n.PayloadType == dtype.CharStar8 {
			pad = 0x04
		}
		if err := buf.PutByte(pad); err != nil {
			return err
		}
	}
	return nil
}

func writeEncodedStrings(buf *buffer.ByteBuffer, strs []string) error {
	for _, s := range strs {
		if err := buf.PutBytes([]byte(s)); err != nil {
			return err
		}
		if err := buf.PutByte(0); err != nil {
			return err
		}
	}
	if len(strs) > 0 {
		if err := buf.PutByte(0x04); err != nil {
			return err
		}
		if err := buf.PutByte(0x04); err != nil {
			return err
		}
	}
	return nil
}
