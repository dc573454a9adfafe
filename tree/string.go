package tree

import (
	"fmt"
	"strings"

	"github.com/JeffersonLab/go-evio/dtype"
)

// String renders a stable depth-first representation of the subtree,
// primarily for debugging and test failure output.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsContainer() {
		fmt.Fprintf(b, "%s%s(tag=%d,num=%d,type=%s)\n", indent, n.Kind, n.Tag, n.Num, dtype.Name(n.PayloadType))
		for _, c := range n.Children {
			c.write(b, depth+1)
		}
		return
	}
	fmt.Fprintf(b, "%s%s(tag=%d,num=%d,type=%s,pad=%d) %v\n", indent, n.Kind, n.Tag, n.Num, dtype.Name(n.PayloadType), n.Padding, n.dataSummary())
}

func (n *Node) dataSummary() interface{} {
	switch n.PayloadType {
	case dtype.Int8:
		return n.Data.Int8
	case dtype.Uint8:
		return n.Data.Uint8
	case dtype.Int16:
		return n.Data.Int16
	case dtype.Uint16:
		return n.Data.Uint16
	case dtype.Int32:
		return n.Data.Int32
	case dtype.Uint32:
		return n.Data.Uint32
	case dtype.Int64:
		return n.Data.Int64
	case dtype.Uint64:
		return n.Data.Uint64
	case dtype.Float32:
		return n.Data.Float32
	case dtype.Float64:
		return n.Data.Float64
	case dtype.CharStar8:
		return n.Data.Strings
	case dtype.Composite:
		return fmt.Sprintf("%d composite bytes", len(n.Data.Composite))
	default:
		return n.Data.Raw
	}
}

// Equal reports deep structural equality: kind, tag, num, payload type and
// either identical child sequences (recursively) or identical payload bytes.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || n.Tag != other.Tag || n.Num != other.Num || n.PayloadType != other.PayloadType {
		return false
	}
	if n.IsContainer() {
		if len(n.Children) != len(other.Children) {
			return false
		}
		for i := range n.Children {
			if !n.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	}
	return leafEqual(n, other)
}

func leafEqual(a, b *Node) bool {
	switch a.PayloadType {
	case dtype.Int8:
		return equalSlices(a.Data.Int8, b.Data.Int8)
	case dtype.Uint8:
		return equalSlices(a.Data.Uint8, b.Data.Uint8)
	case dtype.Int16:
		return equalSlices(a.Data.Int16, b.Data.Int16)
	case dtype.Uint16:
		return equalSlices(a.Data.Uint16, b.Data.Uint16)
	case dtype.Int32:
		return equalSlices(a.Data.Int32, b.Data.Int32)
	case dtype.Uint32:
		return equalSlices(a.Data.Uint32, b.Data.Uint32)
	case dtype.Int64:
		return equalSlices(a.Data.Int64, b.Data.Int64)
	case dtype.Uint64:
		return equalSlices(a.Data.Uint64, b.Data.Uint64)
	case dtype.Float32:
		return equalSlices(a.Data.Float32, b.Data.Float32)
	case dtype.Float64:
		return equalSlices(a.Data.Float64, b.Data.Float64)
	case dtype.CharStar8:
		return equalSlices(a.Data.Strings, b.Data.Strings)
	case dtype.Composite:
		return equalSlices(a.Data.Composite, b.Data.Composite)
	default:
		return equalSlices(a.Data.Raw, b.Data.Raw)
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
