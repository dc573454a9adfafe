package header

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/dtype"
)

func TestBankHeaderRoundTrip(t *testing.T) {
	h := BankHeader{LengthWords: 4, Tag: 1, Padding: 0, PayloadType: dtype.Int32, Num: 1}
	w0, w1 := h.Encode()
	require.Equal(t, uint32(4), w0)

	got, err := DecodeBankHeader(w0, w1)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, uint32(5), h.TotalLengthWords())
}

func TestBankHeaderS1Scenario(t *testing.T) {
	// S1: bank{tag=1,num=1,type=int32} with 3 ints: word1 must equal 0x00010101.
	h := BankHeader{LengthWords: 4, Tag: 1, Padding: 0, PayloadType: dtype.Int32, Num: 1}
	_, w1 := h.Encode()
	require.Equal(t, uint32(0x00010101), w1)
}

func TestSegmentHeaderRoundTrip(t *testing.T) {
	h := SegmentHeader{Tag: 5, Padding: 2, PayloadType: dtype.Float64, LengthWords: 10}
	got, err := DecodeSegmentHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, uint32(11), h.TotalLengthWords())
}

func TestTagsegmentHeaderRoundTrip(t *testing.T) {
	h := TagsegmentHeader{Tag: 0xabc, PayloadType: dtype.Uint32, LengthWords: 7}
	got, err := DecodeTagsegmentHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestBlockHeaderMagicMismatch(t *testing.T) {
	h := NewBlockHeader(0, 4)
	h.Magic = 0x1
	_, err := DecodeBlockHeader(h.Encode())
	require.Error(t, err)
}

func TestBlockHeaderFlags(t *testing.T) {
	h := NewBlockHeader(0, 4)
	h.SetLastBlock(true)
	h.SetHasDictionary(true)
	require.True(t, h.IsLastBlock())
	require.True(t, h.HasDictionary())
	require.False(t, h.HasFirstEvent())
}

func TestRecordHeaderRoundTrip(t *testing.T) {
	h := NewRecordHeader(3, 6)
	h.EventCount = 5
	h.UserRegister1 = 0x1122334455667788
	h.CompressedWords = PackCompressedWords(CompressLZ4, 42)

	got, err := DecodeRecordHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, CompressLZ4, got.CompressionKind())
	require.Equal(t, uint32(42), got.CompressedLengthWords())
}

func TestFileHeaderTypeCodes(t *testing.T) {
	h := NewFileHeader(0, 6, false)
	require.False(t, h.IsHIPO())

	decoded, err := DecodeFileHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, TypeCodeEVIF, decoded.TypeCode)

	hipo := NewFileHeader(0, 6, true)
	decodedHipo, err := DecodeFileHeader(hipo.Encode())
	require.NoError(t, err)
	require.True(t, decodedHipo.IsHIPO())
}
