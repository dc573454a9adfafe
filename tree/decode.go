package tree

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Decode parses one complete event (bank-rooted) starting at buf's current
// position into an object tree, populating every leaf's typed Data field.
func Decode(buf *buffer.ByteBuffer) (*Node, error) {
	n, err := readBank(buf)
	if err != nil {
		return nil, err
	}
	n.SetByteOrder(buf.Order())
	if _, err := n.Normalize(); err != nil {
		return nil, err
	}
	return n, nil
}

func readBank(buf *buffer.ByteBuffer) (*Node, error) {
	w0, err := buf.GetUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: bank word0: %v", xerr.ErrTruncated, err)
	}
	w1, err := buf.GetUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: bank word1: %v", xerr.ErrTruncated, err)
	}
	h, err := header.DecodeBankHeader(w0, w1)
	if err != nil {
		return nil, err
	}
	n := NewBank(h.Tag, h.Num, h.PayloadType)
	n.Padding = h.Padding
	bodyWords := h.LengthWords - 1
	return n, readBody(buf, n, bodyWords)
}

func readSegment(buf *buffer.ByteBuffer) (*Node, error) {
	w, err := buf.GetUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: segment word: %v", xerr.ErrTruncated, err)
	}
	h, err := header.DecodeSegmentHeader(w)
	if err != nil {
		return nil, err
	}
	n := NewSegment(uint16(h.Tag), h.PayloadType)
	n.Padding = h.Padding
	return n, readBody(buf, n, uint32(h.LengthWords))
}

func readTagsegment(buf *buffer.ByteBuffer) (*Node, error) {
	w, err := buf.GetUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: tagsegment word: %v", xerr.ErrTruncated, err)
	}
	h, err := header.DecodeTagsegmentHeader(w)
	if err != nil {
		return nil, err
	}
	n := NewTagsegment(h.Tag, h.PayloadType)
	return n, readBody(buf, n, uint32(h.LengthWords))
}

func readBody(buf *buffer.ByteBuffer, n *Node, bodyWords uint32) error {
	end := buf.Position() + int(bodyWords)*4
	if n.IsContainer() {
		for buf.Position() < end {
			child, err := readChild(buf, containerKindOf(n.PayloadType))
			if err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		}
		if buf.Position() != end {
			return fmt.Errorf("%w: container body overran its declared length", xerr.ErrLengthMismatch)
		}
		return nil
	}
	return readLeafData(buf, n, end)
}

func readChild(buf *buffer.ByteBuffer, kind dtype.Kind) (*Node, error) {
	switch kind {
	case dtype.KindBank:
		return readBank(buf)
	case dtype.KindSegment:
		return readSegment(buf)
	case dtype.KindTagsegment:
		return readTagsegment(buf)
	default:
		return nil, fmt.Errorf("%w: unknown container kind", xerr.ErrUnknownType)
	}
}

func readLeafData(buf *buffer.ByteBuffer, n *Node, end int) error {
	dataStart := buf.Position()
	dataBytes := end - dataStart - int(n.Padding)
	switch n.PayloadType {
	case dtype.Int8:
		n.Data.Int8 = make([]int8, dataBytes)
		for i := range n.Data.Int8 {
			v, err := buf.GetByte()
			if err != nil {
				return err
			}
			n.Data.Int8[i] = int8(v)
		}
	case dtype.Uint8:
		raw, err := buf.GetBytes(dataBytes)
		if err != nil {
			return err
		}
		n.Data.Uint8 = append([]byte(nil), raw...)
	case dtype.Int16:
		n.Data.Int16 = make([]int16, dataBytes/2)
		for i := range n.Data.Int16 {
			v, err := buf.GetUint16()
			if err != nil {
				return err
			}
			n.Data.Int16[i] = int16(v)
		}
	case dtype.Uint16:
		n.Data.Uint16 = make([]uint16, dataBytes/2)
		for i := range n.Data.Uint16 {
			v, err := buf.GetUint16()
			if err != nil {
				return err
			}
			n.Data.Uint16[i] = v
		}
	case dtype.Int32:
		n.Data.Int32 = make([]int32, dataBytes/4)
		for i := range n.Data.Int32 {
			v, err := buf.GetUint32()
			if err != nil {
				return err
			}
			n.Data.Int32[i] = int32(v)
		}
	case dtype.Uint32:
		n.Data.Uint32 = make([]uint32, dataBytes/4)
		for i := range n.Data.Uint32 {
			v, err := buf.GetUint32()
			if err != nil {
				return err
			}
			n.Data.Uint32[i] = v
		}
	case dtype.Int64:
		n.Data.Int64 = make([]int64, dataBytes/8)
		for i := range n.Data.Int64 {
			v, err := buf.GetUint64()
			if err != nil {
				return err
			}
			n.Data.Int64[i] = int64(v)
		}
	case dtype.Uint64:
		n.Data.Uint64 = make([]uint64, dataBytes/8)
		for i := range n.Data.Uint64 {
			v, err := buf.GetUint64()
			if err != nil {
				return err
			}
			n.Data.Uint64[i] = v
		}
	case dtype.Float32:
		n.Data.Float32 = make([]float32, dataBytes/4)
		for i := range n.Data.Float32 {
			v, err := buf.GetFloat32()
			if err != nil {
				return err
			}
			n.Data.Float32[i] = v
		}
	case dtype.Float64:
		n.Data.Float64 = make([]float64, dataBytes/8)
		for i := range n.Data.Float64 {
			v, err := buf.GetFloat64()
			if err != nil {
				return err
			}
			n.Data.Float64[i] = v
		}
	case dtype.CharStar8:
		raw, err := buf.GetBytes(dataBytes)
		if err != nil {
			return err
		}
		n.Data.Strings = splitEvioStrings(raw)
	case dtype.Composite:
		raw, err := buf.GetBytes(dataBytes)
		if err != nil {
			return err
		}
		n.Data.Composite = append([]byte(nil), raw...)
	default:
		n.Data.Raw = make([]uint32, dataBytes/4)
		for i := range n.Data.Raw {
			v, err := buf.GetUint32()
			if err != nil {
				return err
			}
			n.Data.Raw[i] = v
		}
	}
	if n.Padding > 0 {
		if _, err := buf.GetBytes(int(n.Padding)); err != nil {
			return err
		}
	}
	return nil
}

// splitEvioStrings reverses writeEncodedStrings: NUL-separated entries,
// trailing 0x04 sentinel and fill bytes stripped.
func splitEvioStrings(raw []byte) []string {
	for len(raw) > 0 && raw[len(raw)-1] == 0x04 {
		raw = raw[:len(raw)-1]
	}
	if len(raw) == 0 {
		return nil
	}
	var out []string
	start := 0
	for i, b := range raw {
		if b == 0 {
			out = append(out, string(raw[start:i]))
			start = i + 1
		}
	}
	return out
}
