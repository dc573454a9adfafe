package header

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Format identifies which on-disk generation a file or buffer uses.
type Format uint8

const (
	// FormatV4Block is the legacy block-oriented layout.
	FormatV4Block Format = iota
	// FormatV6Record is the record-oriented layout, optionally HIPO.
	FormatV6Record
)

// Detection is the outcome of sniffing a file's leading bytes: which
// framing generation it uses, what byte order its header words are
// written in, and (for v6) whether the file header carries the HIPO type
// code instead of the plain EVIO one.
type Detection struct {
	Format Format
	Order  binary.ByteOrder
	HIPO   bool
}

// Detect inspects the word at byte offset 28 (word index 7 of either an
// 8-word v4 block header or a 14-word v6 record/file header — both put
// their distinguishing field there) to determine framing generation and
// byte order. first32 must hold at least the first 32 bytes of the file
// or buffer. A reader that finds the byte-swapped value infers the
// opposite byte order rather than failing, per the magic-number contract
// in §6.
func Detect(first32 []byte) (Detection, error) {
	if len(first32) < 32 {
		return Detection{}, fmt.Errorf("%w: need 32 bytes to detect format, got %d", xerr.ErrTruncated, len(first32))
	}

	leWord := binary.LittleEndian.Uint32(first32[28:32])
	beWord := binary.BigEndian.Uint32(first32[28:32])

	for _, c := range []struct {
		word   uint32
		order  binary.ByteOrder
		format Format
		hipo   bool
	}{
		{leWord, binary.LittleEndian, FormatV4Block, false},
		{beWord, binary.BigEndian, FormatV4Block, false},
		{leWord, binary.LittleEndian, FormatV6Record, false},
		{beWord, binary.BigEndian, FormatV6Record, false},
		{leWord, binary.LittleEndian, FormatV6Record, true},
		{beWord, binary.BigEndian, FormatV6Record, true},
	} {
		want := expectedWord(c.format, c.hipo)
		if c.word == want {
			return Detection{Format: c.format, Order: c.order, HIPO: c.hipo}, nil
		}
	}
	return Detection{}, fmt.Errorf("%w: unrecognized header word 0x%08x", xerr.ErrMagicMismatch, leWord)
}

func expectedWord(f Format, hipo bool) uint32 {
	if f == FormatV4Block {
		return BlockMagic
	}
	if hipo {
		return TypeCodeHIPR
	}
	return TypeCodeEVIF
}
