// Package dtype is the purely functional catalog of EVIO payload and
// container type codes: code<->name, code->element width, code->container
// classification. Every decoder in this module consults it to know how to
// walk a node's body.
package dtype

import "fmt"

// Type is the 6-bit numeric code carried in a structure header's
// payload-type field.
type Type uint8

// Leaf numeric types.
const (
	Int8     Type = 0x6
	Uint8    Type = 0x7
	Int16    Type = 0x4
	Uint16   Type = 0x5
	Int32    Type = 0x1
	Uint32   Type = 0xb
	Int64    Type = 0x9
	Uint64   Type = 0xa
	Float32  Type = 0x2
	Float64  Type = 0x8
	Unknown32 Type = 0x0
)

// Leaf variable-width types.
const (
	CharStar8 Type = 0x3 // string array, NUL-separated
	Composite Type = 0xf // self-describing composite format
)

// Container types. Each container kind has two equivalent codes historically
// used by different structure kinds; both map to the same classification.
const (
	Bank        Type = 0xe
	Bank2       Type = 0x10
	Segment     Type = 0xd
	Segment2    Type = 0x20
	Tagsegment  Type = 0xc
	Tagsegment2 Type = 0x40
)

var names = map[Type]string{
	Int8: "int8", Uint8: "uint8", Int16: "int16", Uint16: "uint16",
	Int32: "int32", Uint32: "uint32", Int64: "int64", Uint64: "uint64",
	Float32: "float32", Float64: "float64", Unknown32: "unknown32",
	CharStar8: "charstar8", Composite: "composite",
	Bank: "bank", Bank2: "bank", Segment: "segment", Segment2: "segment",
	Tagsegment: "tagsegment", Tagsegment2: "tagsegment",
}

// widths gives the fixed element width in bytes for leaf numeric types.
// Variable-width and container types are not present here; use IsContainer
// and the type-specific codec instead.
var widths = map[Type]int{
	Int8: 1, Uint8: 1,
	Int16: 2, Uint16: 2,
	Int32: 4, Uint32: 4, Float32: 4, Unknown32: 4,
	Int64: 8, Uint64: 8, Float64: 8,
}

var containers = map[Type]bool{
	Bank: true, Bank2: true,
	Segment: true, Segment2: true,
	Tagsegment: true, Tagsegment2: true,
}

// Name returns the canonical name of a type code, or "unknown" if the code
// is outside the catalog. Unknown codes are tolerated by the reader (they
// decode as raw words), so this never errors.
func Name(t Type) string {
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

// IsContainer reports whether t denotes a container kind (bank/segment/tagsegment).
func IsContainer(t Type) bool {
	return containers[t]
}

// IsKnown reports whether t is present in the catalog at all.
func IsKnown(t Type) bool {
	_, ok := names[t]
	return ok
}

// ElementWidth returns the element width in bytes of a leaf numeric type.
// It returns an error for container types, variable-width leaf types
// (CharStar8, Composite), and unrecognized codes — callers that reach those
// must special-case them rather than assume a fixed width.
func ElementWidth(t Type) (int, error) {
	if w, ok := widths[t]; ok {
		return w, nil
	}
	return 0, fmt.Errorf("type %s (0x%x) has no fixed element width", Name(t), uint8(t))
}

// Kind identifies one of the three container structures, which differ only
// in header layout and maximum field widths (see header package).
type Kind uint8

const (
	KindBank Kind = iota
	KindSegment
	KindTagsegment
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindBank:
		return "bank"
	case KindSegment:
		return "segment"
	case KindTagsegment:
		return "tagsegment"
	default:
		return "unknown-kind"
	}
}
