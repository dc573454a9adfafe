package tree

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// setLeaf validates that n is declared as the given leaf type, rejecting any
// other declared type, and marks lengths stale.
func (n *Node) setLeaf(t dtype.Type) error {
	if dtype.IsContainer(n.PayloadType) {
		return fmt.Errorf("%w: node declared as container cannot hold a leaf payload", xerr.ErrTypeMismatch)
	}
	if n.PayloadType != t {
		// A freshly-built node created with NewBank(..., t) already carries
		// t; setting data of a different type than declared is a caller bug.
		return fmt.Errorf("%w: node declared payload type %s, got %s", xerr.ErrTypeMismatch, dtype.Name(n.PayloadType), dtype.Name(t))
	}
	n.upToDate = false
	return nil
}

// SetInt8Data sets an int8 leaf payload.
func (n *Node) SetInt8Data(v []int8) error {
	if err := n.setLeaf(dtype.Int8); err != nil {
		return err
	}
	n.Data.Int8 = v
	return nil
}

// SetUint8Data sets a uint8 leaf payload.
func (n *Node) SetUint8Data(v []uint8) error {
	if err := n.setLeaf(dtype.Uint8); err != nil {
		return err
	}
	n.Data.Uint8 = v
	return nil
}

// SetInt16Data sets an int16 leaf payload.
func (n *Node) SetInt16Data(v []int16) error {
	if err := n.setLeaf(dtype.Int16); err != nil {
		return err
	}
	n.Data.Int16 = v
	return nil
}

// SetUint16Data sets a uint16 leaf payload.
func (n *Node) SetUint16Data(v []uint16) error {
	if err := n.setLeaf(dtype.Uint16); err != nil {
		return err
	}
	n.Data.Uint16 = v
	return nil
}

// SetInt32Data sets an int32 leaf payload.
func (n *Node) SetInt32Data(v []int32) error {
	if err := n.setLeaf(dtype.Int32); err != nil {
		return err
	}
	n.Data.Int32 = v
	return nil
}

// SetUint32Data sets a uint32 leaf payload.
func (n *Node) SetUint32Data(v []uint32) error {
	if err := n.setLeaf(dtype.Uint32); err != nil {
		return err
	}
	n.Data.Uint32 = v
	return nil
}

// SetInt64Data sets an int64 leaf payload.
func (n *Node) SetInt64Data(v []int64) error {
	if err := n.setLeaf(dtype.Int64); err != nil {
		return err
	}
	n.Data.Int64 = v
	return nil
}

// SetUint64Data sets a uint64 leaf payload.
func (n *Node) SetUint64Data(v []uint64) error {
	if err := n.setLeaf(dtype.Uint64); err != nil {
		return err
	}
	n.Data.Uint64 = v
	return nil
}

// SetFloat32Data sets a float32 leaf payload.
func (n *Node) SetFloat32Data(v []float32) error {
	if err := n.setLeaf(dtype.Float32); err != nil {
		return err
	}
	n.Data.Float32 = v
	return nil
}

// SetFloat64Data sets a float64 leaf payload.
func (n *Node) SetFloat64Data(v []float64) error {
	if err := n.setLeaf(dtype.Float64); err != nil {
		return err
	}
	n.Data.Float64 = v
	return nil
}

// SetStringData sets a string-array leaf payload (type 0x3).
func (n *Node) SetStringData(v []string) error {
	if err := n.setLeaf(dtype.CharStar8); err != nil {
		return err
	}
	n.Data.Strings = v
	return nil
}

// SetCompositeData sets a composite leaf payload (type 0xf), already
// encoded in its self-describing wire format.
func (n *Node) SetCompositeData(raw []byte) error {
	if err := n.setLeaf(dtype.Composite); err != nil {
		return err
	}
	n.Data.Composite = raw
	return nil
}

// SetRawData sets the raw-words fallback used when PayloadType is outside
// the catalog (tolerant decode of an unknown type).
func (n *Node) SetRawData(words []uint32) error {
	n.Data.Raw = words
	n.upToDate = false
	return nil
}
