// Package header implements the fixed bit-layout encoders/decoders for
// EVIO structure headers (bank, segment, tagsegment) and framing headers
// (v4 block, v6 record, file header), per the data model's length and
// padding invariants.
package header

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// BankHeader is the two-word header of a bank node.
//
// Word0 = (total length of bank - 1), in 32-bit words, not counting word0.
// Word1: tag (bits 31-16), padding (bits 15-14), payload type (bits 13-8),
// num (bits 7-0).
type BankHeader struct {
	LengthWords uint32 // value stored in word0 (already "length - 1")
	Tag         uint16
	Padding     uint8 // 0-3 unused trailing bytes of a non-4-byte-aligned payload
	PayloadType dtype.Type
	Num         uint8
}

// DecodeBankHeader unpacks a two-word bank header.
func DecodeBankHeader(word0, word1 uint32) (BankHeader, error) {
	h := BankHeader{
		LengthWords: word0,
		Tag:         uint16(word1 >> 16),
		Padding:     uint8((word1 >> 14) & 0x3),
		PayloadType: dtype.Type((word1 >> 8) & 0x3f),
		Num:         uint8(word1 & 0xff),
	}
	if h.Padding > 3 {
		return BankHeader{}, fmt.Errorf("%w: bank padding field %d out of range", xerr.ErrMalformedHeader, h.Padding)
	}
	return h, nil
}

// Encode packs the bank header back into its two words. LengthWords must
// already be set to (total bank length in words - 1).
func (h BankHeader) Encode() (word0, word1 uint32) {
	word0 = h.LengthWords
	word1 = uint32(h.Tag)<<16 | uint32(h.Padding&0x3)<<14 | uint32(h.PayloadType&0x3f)<<8 | uint32(h.Num)
	return word0, word1
}

// TotalLengthWords returns the total bank length in 32-bit words, including
// both header words.
func (h BankHeader) TotalLengthWords() uint32 {
	return h.LengthWords + 1
}

// SegmentHeader is the one-word header of a segment node.
//
// Tag (bits 31-24), padding (bits 23-22), payload type (bits 21-16),
// length in words excluding this header (bits 15-0).
type SegmentHeader struct {
	Tag         uint8
	Padding     uint8
	PayloadType dtype.Type
	LengthWords uint16 // excludes this header word
}

// DecodeSegmentHeader unpacks a one-word segment header.
func DecodeSegmentHeader(word uint32) (SegmentHeader, error) {
	h := SegmentHeader{
		Tag:         uint8(word >> 24),
		Padding:     uint8((word >> 22) & 0x3),
		PayloadType: dtype.Type((word >> 16) & 0x3f),
		LengthWords: uint16(word & 0xffff),
	}
	return h, nil
}

// Encode packs the segment header back into its single word.
func (h SegmentHeader) Encode() uint32 {
	return uint32(h.Tag)<<24 | uint32(h.Padding&0x3)<<22 | uint32(h.PayloadType&0x3f)<<16 | uint32(h.LengthWords)
}

// TotalLengthWords returns the total segment length in 32-bit words,
// including the header word.
func (h SegmentHeader) TotalLengthWords() uint32 {
	return uint32(h.LengthWords) + 1
}

// TagsegmentHeader is the one-word header of a tagsegment node. It has no
// padding field: only 4-byte-aligned payload types are legal here.
//
// Tag (bits 31-20), payload type (bits 19-16), length in words (bits 15-0).
type TagsegmentHeader struct {
	Tag         uint16 // 12 bits
	PayloadType dtype.Type
	LengthWords uint16 // excludes this header word
}

// DecodeTagsegmentHeader unpacks a one-word tagsegment header.
func DecodeTagsegmentHeader(word uint32) (TagsegmentHeader, error) {
	return TagsegmentHeader{
		Tag:         uint16(word >> 20),
		PayloadType: dtype.Type((word >> 16) & 0xf),
		LengthWords: uint16(word & 0xffff),
	}, nil
}

// Encode packs the tagsegment header back into its single word.
func (h TagsegmentHeader) Encode() uint32 {
	return uint32(h.Tag&0xfff)<<20 | uint32(h.PayloadType&0xf)<<16 | uint32(h.LengthWords)
}

// TotalLengthWords returns the total tagsegment length in 32-bit words,
// including the header word.
func (h TagsegmentHeader) TotalLengthWords() uint32 {
	return uint32(h.LengthWords) + 1
}
