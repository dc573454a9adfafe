package compact

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Node is a lightweight descriptor into an already-serialized buffer: no
// payload vector is materialized, only the coordinates needed to compute
// one on demand. ParentIndex/FirstChild/ChildCount let callers walk the
// flat vector without following pointers.
type Node struct {
	Offset      int // byte offset of this node's own header, within the scanned buffer
	LengthWords uint32
	Kind        dtype.Kind
	Tag         uint16
	Num         uint8
	Padding     uint8
	PayloadType dtype.Type
	ParentIndex int // -1 for the root
	FirstChild  int // -1 if this node is a leaf
	ChildCount  int
}

// IsContainer reports whether the node holds children rather than a leaf payload.
func (n Node) IsContainer() bool { return dtype.IsContainer(n.PayloadType) }

// HeaderWords returns how many words this node's own header occupies.
func (n Node) HeaderWords() int {
	if n.Kind == dtype.KindBank {
		return 2
	}
	return 1
}

// PayloadOffset returns the byte offset, within the scanned buffer, where
// this node's payload bytes (leaf data, or first child's header for a
// container) begin.
func (n Node) PayloadOffset() int {
	return n.Offset + n.HeaderWords()*4
}

// PayloadBytes returns the leaf payload byte span [start,end) on demand,
// computed from LengthWords/Padding; it does not copy or decode.
func (n Node) PayloadBytes(buf *buffer.ByteBuffer) ([]byte, error) {
	if n.IsContainer() {
		return nil, fmt.Errorf("%w: node is a container", xerr.ErrTypeMismatch)
	}
	totalBytes := int(n.LengthWords)*4 - n.HeaderWords()*4
	start := n.PayloadOffset()
	data, err := buf.Duplicate().SetPosition(start).GetBytes(totalBytes)
	if err != nil {
		return nil, err
	}
	if int(n.Padding) > totalBytes {
		return nil, fmt.Errorf("%w: padding exceeds payload length", xerr.ErrMalformedHeader)
	}
	return data[:totalBytes-int(n.Padding)], nil
}

// Scan builds a flat vector of Node handles for the event (or substructure)
// beginning at buf's current position, without constructing a tree.Node
// tree. Node 0 is always the root.
func Scan(buf *buffer.ByteBuffer) ([]Node, error) {
	var nodes []Node
	_, err := scanOne(buf, -1, &nodes)
	return nodes, err
}

func scanOne(buf *buffer.ByteBuffer, parent int, nodes *[]Node) (int, error) {
	start := buf.Position()

	w0, err := buf.GetUint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	w1, err := buf.GetUint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	bh, err := header.DecodeBankHeader(w0, w1)
	if err != nil {
		return 0, err
	}

	idx := len(*nodes)
	node := Node{
		Offset: start, LengthWords: bh.TotalLengthWords(), Kind: dtype.KindBank,
		Tag: bh.Tag, Num: bh.Num, Padding: bh.Padding, PayloadType: bh.PayloadType,
		ParentIndex: parent, FirstChild: -1,
	}
	*nodes = append(*nodes, node)

	bodyEnd := start + int(bh.TotalLengthWords())*4
	if err := walkChildrenOrSkip(buf, idx, bodyEnd, nodes); err != nil {
		return 0, err
	}
	buf.SetPosition(bodyEnd)
	return idx, nil
}

func walkChildrenOrSkip(buf *buffer.ByteBuffer, idx int, bodyEnd int, nodes *[]Node) error {
	node := (*nodes)[idx]
	if !node.IsContainer() {
		return nil // leaf: caller repositions past bodyEnd, nothing more to scan
	}

	first := -1
	count := 0
	for buf.Position() < bodyEnd {
		childIdx, err := scanChild(buf, node.PayloadType, idx, nodes)
		if err != nil {
			return err
		}
		if first == -1 {
			first = childIdx
		}
		count++
	}
	(*nodes)[idx].FirstChild = first
	(*nodes)[idx].ChildCount = count
	return nil
}

func scanChild(buf *buffer.ByteBuffer, containerType dtype.Type, parent int, nodes *[]Node) (int, error) {
	switch containerType {
	case dtype.Bank, dtype.Bank2:
		return scanOne(buf, parent, nodes)
	case dtype.Segment, dtype.Segment2:
		return scanSegment(buf, parent, nodes)
	case dtype.Tagsegment, dtype.Tagsegment2:
		return scanTagsegment(buf, parent, nodes)
	default:
		return 0, fmt.Errorf("%w: container declares non-container child type %s", xerr.ErrMalformedHeader, dtype.Name(containerType))
	}
}

func scanSegment(buf *buffer.ByteBuffer, parent int, nodes *[]Node) (int, error) {
	start := buf.Position()
	w, err := buf.GetUint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	sh, err := header.DecodeSegmentHeader(w)
	if err != nil {
		return 0, err
	}
	idx := len(*nodes)
	*nodes = append(*nodes, Node{
		Offset: start, LengthWords: sh.TotalLengthWords(), Kind: dtype.KindSegment,
		Tag: uint16(sh.Tag), Padding: sh.Padding, PayloadType: sh.PayloadType,
		ParentIndex: parent, FirstChild: -1,
	})
	bodyEnd := start + int(sh.TotalLengthWords())*4
	if err := walkChildrenOrSkip(buf, idx, bodyEnd, nodes); err != nil {
		return 0, err
	}
	buf.SetPosition(bodyEnd)
	return idx, nil
}

func scanTagsegment(buf *buffer.ByteBuffer, parent int, nodes *[]Node) (int, error) {
	start := buf.Position()
	w, err := buf.GetUint32()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	th, err := header.DecodeTagsegmentHeader(w)
	if err != nil {
		return 0, err
	}
	idx := len(*nodes)
	*nodes = append(*nodes, Node{
		Offset: start, LengthWords: th.TotalLengthWords(), Kind: dtype.KindTagsegment,
		Tag: th.Tag, PayloadType: th.PayloadType,
		ParentIndex: parent, FirstChild: -1,
	})
	bodyEnd := start + int(th.TotalLengthWords())*4
	if err := walkChildrenOrSkip(buf, idx, bodyEnd, nodes); err != nil {
		return 0, err
	}
	buf.SetPosition(bodyEnd)
	return idx, nil
}
