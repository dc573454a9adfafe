package header

import "fmt"

// FileHeaderWords is the fixed length, in 32-bit words, of a v6 file header.
const FileHeaderWords = 14

// File-header type codes, occupying the position the record's magic
// word occupies. A reader accepts either transparently: HIPO files are
// byte-identical to evio v6 records aside from this one field.
const (
	TypeCodeEVIF uint32 = 0x45564946 // "EVIF"
	TypeCodeHIPR uint32 = 0x48495052 // "HIPR" (HIPO)
)

// FileHeader is the 14-word v6 file header, structurally identical to a
// RecordHeader but with a type code instead of a magic word and
// trailer-position / user-header-length fields instead of event count.
type FileHeader struct {
	HeaderLengthWords uint32 // always FileHeaderWords (14)
	FileNumber        uint32
	HeaderWords2      uint32 // echoes HeaderLengthWords position in the record layout
	UserHeaderBytes   uint32
	IndexArrayBytes   uint32
	BitInfoVersion    uint32
	TrailerUserHdrLen uint32
	TypeCode          uint32
	TrailerPosition   uint64 // position (bytes) of the trailer record
	UserRegister      uint64
}

// Version returns the low 8 bits of BitInfoVersion.
func (h FileHeader) Version() uint8 { return uint8(h.BitInfoVersion & 0xff) }

// IsHIPO reports whether this file header carries the HIPO type code
// rather than the plain EVIO v6 type code.
func (h FileHeader) IsHIPO() bool { return h.TypeCode == TypeCodeHIPR }

// DecodeFileHeader unpacks the 14 header words, validating the type code
// against the two recognized values.
func DecodeFileHeader(words [FileHeaderWords]uint32) (FileHeader, error) {
	h := FileHeader{
		HeaderLengthWords: words[0],
		FileNumber:        words[1],
		HeaderWords2:      words[2],
		UserHeaderBytes:   words[3],
		IndexArrayBytes:   words[4],
		BitInfoVersion:    words[5],
		TrailerUserHdrLen: words[6],
		TypeCode:          words[7],
		TrailerPosition:   uint64(words[8]) | uint64(words[9])<<32,
		UserRegister:      uint64(words[10]) | uint64(words[11])<<32,
	}
	if h.TypeCode != TypeCodeEVIF && h.TypeCode != TypeCodeHIPR {
		return FileHeader{}, fmt.Errorf("unrecognized file header type code 0x%08x", h.TypeCode)
	}
	return h, nil
}

// Encode packs the file header back into its 14 words.
func (h FileHeader) Encode() [FileHeaderWords]uint32 {
	return [FileHeaderWords]uint32{
		h.HeaderLengthWords, h.FileNumber, h.HeaderWords2, h.UserHeaderBytes,
		h.IndexArrayBytes, h.BitInfoVersion, h.TrailerUserHdrLen, h.TypeCode,
		uint32(h.TrailerPosition), uint32(h.TrailerPosition >> 32),
		uint32(h.UserRegister), uint32(h.UserRegister >> 32),
		0, 0,
	}
}

// NewFileHeader returns a zeroed header with HeaderLengthWords, version and
// type code pre-filled.
func NewFileHeader(fileNumber uint32, version uint8, hipo bool) FileHeader {
	typeCode := TypeCodeEVIF
	if hipo {
		typeCode = TypeCodeHIPR
	}
	return FileHeader{
		HeaderLengthWords: FileHeaderWords,
		FileNumber:        fileNumber,
		BitInfoVersion:    uint32(version),
		TypeCode:          typeCode,
	}
}
