package header

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// RecordWords is the fixed length, in 32-bit words, of a v6 record header.
const RecordWords = 14

// RecordMagic is the fixed magic number in word 7 of every v6 record
// header, written in the file's byte order like every other header word.
// The v6 file header carries a type code in that word instead.
const RecordMagic uint32 = 0xc0da0100

// CompressionType enumerates the bulk-codec kinds the record framing codec
// recognizes; see the compress package for implementations.
type CompressionType uint8

const (
	CompressNone    CompressionType = 0
	CompressLZ4     CompressionType = 1
	CompressLZ4Best CompressionType = 2
	CompressGzip    CompressionType = 3
)

// RecordHeader is the 14-word v6 record framing header.
type RecordHeader struct {
	RecordLengthWords uint32
	RecordNumber      uint32
	HeaderLengthWords uint32 // always RecordWords (14)
	EventCount        uint32
	IndexArrayBytes   uint32
	BitInfoVersion    uint32 // low 8 bits version; remaining bits carry flags (last-record, has-dictionary, ...)
	UserHeaderBytes   uint32
	Magic             uint32
	UncompressedBytes uint32
	CompressedWords   uint32 // low 28 bits length in words, top 4 bits CompressionType
	UserRegister1     uint64
	UserRegister2     uint64
}

const (
	bitRecordLastRecord     = 8
	bitRecordHasDictionary  = 9
	bitRecordHasFirstEvent  = 10
)

// Version returns the low 8 bits of BitInfoVersion.
func (h RecordHeader) Version() uint8 { return uint8(h.BitInfoVersion & 0xff) }

// IsLastRecord reports whether this is the trailer / final record.
func (h RecordHeader) IsLastRecord() bool { return h.BitInfoVersion&(1<<bitRecordLastRecord) != 0 }

// HasDictionary reports whether the record's user-header carries a dictionary.
func (h RecordHeader) HasDictionary() bool { return h.BitInfoVersion&(1<<bitRecordHasDictionary) != 0 }

// HasFirstEvent reports whether the record's user-header carries a first event.
func (h RecordHeader) HasFirstEvent() bool { return h.BitInfoVersion&(1<<bitRecordHasFirstEvent) != 0 }

// SetLastRecord sets or clears the last-record flag.
func (h *RecordHeader) SetLastRecord(v bool) { h.setBit(bitRecordLastRecord, v) }

// SetHasDictionary sets or clears the has-dictionary flag.
func (h *RecordHeader) SetHasDictionary(v bool) { h.setBit(bitRecordHasDictionary, v) }

// SetHasFirstEvent sets or clears the has-first-event flag.
func (h *RecordHeader) SetHasFirstEvent(v bool) { h.setBit(bitRecordHasFirstEvent, v) }

func (h *RecordHeader) setBit(bit int, v bool) {
	if v {
		h.BitInfoVersion |= 1 << uint(bit)
	} else {
		h.BitInfoVersion &^= 1 << uint(bit)
	}
}

// CompressionKind returns the compression kind packed into the top 4 bits
// of CompressedWords.
func (h RecordHeader) CompressionKind() CompressionType {
	return CompressionType(h.CompressedWords >> 28)
}

// CompressedLengthWords returns the compressed payload length in words,
// the low 28 bits of CompressedWords.
func (h RecordHeader) CompressedLengthWords() uint32 {
	return h.CompressedWords & 0x0fffffff
}

// PackCompressedWords combines a compression kind and a compressed-data
// length (words) into the single CompressedWords field.
func PackCompressedWords(kind CompressionType, lengthWords uint32) uint32 {
	return uint32(kind)<<28 | (lengthWords & 0x0fffffff)
}

// DecodeRecordHeader unpacks the 14 header words, validating the magic
// number and header-length field.
func DecodeRecordHeader(words [RecordWords]uint32) (RecordHeader, error) {
	h := RecordHeader{
		RecordLengthWords: words[0],
		RecordNumber:      words[1],
		HeaderLengthWords: words[2],
		EventCount:        words[3],
		IndexArrayBytes:   words[4],
		BitInfoVersion:    words[5],
		UserHeaderBytes:   words[6],
		Magic:             words[7],
		UncompressedBytes: words[8],
		CompressedWords:   words[9],
		UserRegister1:     uint64(words[10]) | uint64(words[11])<<32,
		UserRegister2:     uint64(words[12]) | uint64(words[13])<<32,
	}
	if h.HeaderLengthWords != RecordWords {
		return RecordHeader{}, fmt.Errorf("%w: record header-length field is %d, want %d", xerr.ErrMalformedHeader, h.HeaderLengthWords, RecordWords)
	}
	if h.Magic != RecordMagic {
		return RecordHeader{}, fmt.Errorf("%w: record magic 0x%08x", xerr.ErrMagicMismatch, h.Magic)
	}
	return h, nil
}

// Encode packs the record header back into its 14 words.
func (h RecordHeader) Encode() [RecordWords]uint32 {
	return [RecordWords]uint32{
		h.RecordLengthWords, h.RecordNumber, h.HeaderLengthWords, h.EventCount,
		h.IndexArrayBytes, h.BitInfoVersion, h.UserHeaderBytes, h.Magic,
		h.UncompressedBytes, h.CompressedWords,
		uint32(h.UserRegister1), uint32(h.UserRegister1 >> 32),
		uint32(h.UserRegister2), uint32(h.UserRegister2 >> 32),
	}
}

// NewRecordHeader returns a zeroed header with HeaderLengthWords and Magic
// pre-filled, version set, ready for a writer to fill in the rest.
func NewRecordHeader(recordNumber uint32, version uint8) RecordHeader {
	return RecordHeader{
		RecordNumber:      recordNumber,
		HeaderLengthWords: RecordWords,
		BitInfoVersion:    uint32(version),
		Magic:             RecordMagic,
	}
}
