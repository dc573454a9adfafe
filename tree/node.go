// Package tree is the in-memory structure tree: nested bank/segment/
// tagsegment nodes carrying typed payload vectors or child lists. An event
// is the distinguished root node, always a bank.
package tree

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Node is a tagged variant over the three container kinds at the structure
// level and the leaf payload types at the data level. Container nodes carry
// Children; leaf nodes carry Data. A node is never both.
type Node struct {
	Kind        dtype.Kind
	Tag         uint16 // tagsegment and bank use the full width; segment truncates to 8 bits on encode
	Num         uint8  // banks only; ignored for segment/tagsegment
	PayloadType dtype.Type
	Padding     uint8 // 0-3, recomputed on normalize for numeric leaves with width<4

	Children []*Node // non-nil only if dtype.IsContainer(PayloadType)
	Data      Payload // non-nil only if leaf

	order    binary.ByteOrder
	upToDate bool
}

// Payload holds exactly one populated field, selected by the owning node's
// PayloadType. The fields are read directly; the owning node's PayloadType
// says which one is live.
type Payload struct {
	Int8    []int8
	Uint8   []uint8
	Int16   []int16
	Uint16  []uint16
	Int32   []int32
	Uint32  []uint32
	Int64   []int64
	Uint64  []uint64
	Float32 []float32
	Float64 []float64
	Strings []string
	// Composite carries the raw self-describing composite-format bytes
	// unparsed; the format grammar is outside this module's scope.
	Composite []byte
	// Raw carries words for a payload type outside the catalog — the
	// reader tolerates unknown types by decoding them as raw words rather
	// than failing the whole event.
	Raw []uint32
}

// NewBank creates a leaf-less bank node ready to receive children or a
// typed payload via the builder.
func NewBank(tag uint16, num uint8, payloadType dtype.Type) *Node {
	return &Node{Kind: dtype.KindBank, Tag: tag, Num: num, PayloadType: payloadType}
}

// NewSegment creates a segment node.
func NewSegment(tag uint16, payloadType dtype.Type) *Node {
	return &Node{Kind: dtype.KindSegment, Tag: tag & 0xff, PayloadType: payloadType}
}

// NewTagsegment creates a tagsegment node.
func NewTagsegment(tag uint16, payloadType dtype.Type) *Node {
	return &Node{Kind: dtype.KindTagsegment, Tag: tag & 0xfff, PayloadType: payloadType}
}

// IsContainer reports whether n holds children rather than a leaf payload.
func (n *Node) IsContainer() bool { return dtype.IsContainer(n.PayloadType) }

// ByteOrder returns the byte order that produced/will serialize this node.
// It is propagated from the root buffer during parse and defaults to
// little-endian for freshly built trees.
func (n *Node) ByteOrder() binary.ByteOrder {
	if n.order == nil {
		return binary.LittleEndian
	}
	return n.order
}

// SetByteOrder sets the node's byte order, used by the builder/parser to
// propagate the root buffer's order down the tree.
func (n *Node) SetByteOrder(order binary.ByteOrder) { n.order = order }

// AddChild appends child to n's child list. n must be a container whose
// declared PayloadType's kind matches child.Kind.
func (n *Node) AddChild(child *Node) error {
	if !n.IsContainer() {
		return fmt.Errorf("%w: node with payload type %s cannot take children", xerr.ErrTypeMismatch, dtype.Name(n.PayloadType))
	}
	if err := n.checkChildKind(child.Kind); err != nil {
		return err
	}
	n.Children = append(n.Children, child)
	child.order = n.order
	n.upToDate = false
	return nil
}

func (n *Node) checkChildKind(k dtype.Kind) error {
	want := containerKindOf(n.PayloadType)
	if want != k {
		return fmt.Errorf("%w: container declares child kind %s, got %s", xerr.ErrTypeMismatch, want, k)
	}
	return nil
}

func containerKindOf(t dtype.Type) dtype.Kind {
	switch t {
	case dtype.Bank, dtype.Bank2:
		return dtype.KindBank
	case dtype.Segment, dtype.Segment2:
		return dtype.KindSegment
	case dtype.Tagsegment, dtype.Tagsegment2:
		return dtype.KindTagsegment
	default:
		return dtype.Kind(0xff)
	}
}

// RemoveChild removes the child at index i.
func (n *Node) RemoveChild(i int) error {
	if i < 0 || i >= len(n.Children) {
		return fmt.Errorf("%w: child index %d out of range", xerr.ErrStackUnderflow, i)
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	n.upToDate = false
	return nil
}

// ReplaceChild swaps the child at index i for replacement.
func (n *Node) ReplaceChild(i int, replacement *Node) error {
	if i < 0 || i >= len(n.Children) {
		return fmt.Errorf("%w: child index %d out of range", xerr.ErrStackUnderflow, i)
	}
	if err := n.checkChildKind(replacement.Kind); err != nil {
		return err
	}
	n.Children[i] = replacement
	n.upToDate = false
	return nil
}

// UpToDate reports whether the cached length fields are valid. Mutation
// APIs mark this false; Normalize recomputes lengths and sets it true.
func (n *Node) UpToDate() bool { return n.upToDate }
