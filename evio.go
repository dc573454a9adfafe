// Package evio is the public entry point: Writer and Reader over the v4
// block and v6 record container formats, built on the lower-level buffer,
// header, tree, compact, record and dictionary packages.
package evio

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
	"github.com/JeffersonLab/go-evio/tree"
)

// eventBytes normalizes a caller-supplied event into its encoded wire form.
// A *tree.Node is encoded fresh in order; a []byte is taken as already
// encoded and used as-is.
func eventBytes(v interface{}, order binary.ByteOrder) ([]byte, error) {
	switch e := v.(type) {
	case []byte:
		return e, nil
	case *tree.Node:
		return tree.Encode(e, order)
	default:
		return nil, fmt.Errorf("%w: event must be []byte or *tree.Node, got %T", xerr.ErrTypeMismatch, v)
	}
}

// encodeDictionaryEvent wraps a dictionary's XML text as the bank evio
// writers conventionally use to carry it: tag/num zero, string payload.
func encodeDictionaryEvent(xml string, order binary.ByteOrder) ([]byte, error) {
	bank := tree.NewBank(0, 0, dtype.CharStar8)
	bank.Data.Strings = []string{xml}
	return tree.Encode(bank, order)
}
