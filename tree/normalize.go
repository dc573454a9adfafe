package tree

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// headerWords returns the number of 32-bit words n's own header occupies,
// determined by its structural kind (not its payload type).
func (n *Node) headerWords() uint32 {
	switch n.Kind {
	case dtype.KindBank:
		return 2
	default:
		return 1
	}
}

// PayloadByteLen returns the unpadded element byte count and the padding
// byte count (0-3) for a leaf node, per the invariant in §3: padding ==
// (4 - (elements*width mod 4)) mod 4 for width-1/2 leaves, and 0 for
// already 4-byte-aligned element widths.
func (n *Node) PayloadByteLen() (dataBytes int, padBytes int, err error) {
	if n.IsContainer() {
		return 0, 0, fmt.Errorf("%w: node is a container", xerr.ErrTypeMismatch)
	}
	switch n.PayloadType {
	case dtype.Int8:
		dataBytes = len(n.Data.Int8)
	case dtype.Uint8:
		dataBytes = len(n.Data.Uint8)
	case dtype.Int16:
		dataBytes = len(n.Data.Int16) * 2
	case dtype.Uint16:
		dataBytes = len(n.Data.Uint16) * 2
	case dtype.Int32:
		dataBytes = len(n.Data.Int32) * 4
	case dtype.Uint32:
		dataBytes = len(n.Data.Uint32) * 4
	case dtype.Int64:
		dataBytes = len(n.Data.Int64) * 8
	case dtype.Uint64:
		dataBytes = len(n.Data.Uint64) * 8
	case dtype.Float32:
		dataBytes = len(n.Data.Float32) * 4
	case dtype.Float64:
		dataBytes = len(n.Data.Float64) * 8
	case dtype.CharStar8:
		dataBytes = encodedStringLen(n.Data.Strings) // already includes sentinel, pre-padding
		return dataBytes, (4 - dataBytes%4) % 4, nil
	case dtype.Composite:
		dataBytes = len(n.Data.Composite)
	default:
		dataBytes = len(n.Data.Raw) * 4
	}
	if dataBytes%4 == 0 {
		return dataBytes, 0, nil
	}
	return dataBytes, (4 - dataBytes%4) % 4, nil
}

// Normalize recomputes lengths and padding fields bottom-up across the
// whole subtree rooted at n, marking every node's lengths up to date. It must
// be called (directly or via a builder's CloseAll) before serialization of
// any tree mutated since the last normalize.
func (n *Node) Normalize() (lengthWords uint32, err error) {
	if n.IsContainer() {
		var sum uint32
		for _, child := range n.Children {
			cw, err := child.Normalize()
			if err != nil {
				return 0, err
			}
			sum += cw
		}
		n.Padding = 0
		n.upToDate = true
		return n.headerWords() + sum, nil
	}

	dataBytes, padBytes, err := n.PayloadByteLen()
	if err != nil {
		return 0, err
	}
	if padBytes > 3 {
		return 0, fmt.Errorf("%w: padding %d out of range", xerr.ErrMalformedHeader, padBytes)
	}
	n.Padding = uint8(padBytes)
	payloadWords := uint32((dataBytes + padBytes) / 4)
	n.upToDate = true
	return n.headerWords() + payloadWords, nil
}

// encodedStringLen returns the byte length of the EVIO string-array
// encoding: each string UTF-8 NUL-separated, a doubled final "\x04"
// sentinel, no padding (padding is applied by the caller to a 4-byte
// boundary using "\x04" fill bytes per §3).
func encodedStringLen(strs []string) int {
	if len(strs) == 0 {
		return 0
	}
	n := 0
	for _, s := range strs {
		n += len(s) + 1 // NUL terminator
	}
	n += 2 // doubled final \x04 sentinel, two bytes beyond the last NUL
	return n
}
