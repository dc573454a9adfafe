package record

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/header"
)

func event(words ...uint32) []byte {
	buf := buffer.Allocate(len(words) * 4)
	for _, w := range words {
		_ = buf.PutUint32(w)
	}
	return buf.Bytes()
}

func TestEncodeDecodeRecordUncompressedS1(t *testing.T) {
	ev := event(0x00000004, 0x00010101, 0x00000001, 0x00000002, 0x00000003)
	buf, err := EncodeRecord([][]byte{ev}, EncodeOptions{
		RecordNumber: 1, Version: 6, Order: binary.LittleEndian, Compression: header.CompressNone,
	})
	require.NoError(t, err)

	buf.SetPosition(0)
	r, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, 1, r.EventCount())

	got, err := r.Event(0)
	require.NoError(t, err)
	require.Equal(t, ev, got)
}

func TestEncodeDecodeRecordCompressed(t *testing.T) {
	events := make([][]byte, 0, 100)
	for i := 0; i < 100; i++ {
		events = append(events, event(0x00000004, 0x00010101, uint32(i), uint32(i), uint32(i)))
	}
	buf, err := EncodeRecord(events, EncodeOptions{
		RecordNumber: 1, Version: 6, Order: binary.LittleEndian, Compression: header.CompressLZ4,
	})
	require.NoError(t, err)

	buf.SetPosition(0)
	r, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, 100, r.EventCount())

	for i, want := range events {
		got, err := r.Event(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Less(t, r.Header.CompressedLengthWords()*4, r.Header.UncompressedBytes)
}

func TestDecodeRecordMagicMismatch(t *testing.T) {
	buf, err := EncodeRecord(nil, EncodeOptions{RecordNumber: 0, Version: 6, Order: binary.LittleEndian})
	require.NoError(t, err)
	require.NoError(t, buf.PutUint32At(7*4, 0xdeadbeef))

	buf.SetPosition(0)
	_, err = DecodeRecord(buf)
	require.Error(t, err)
}

func TestTrailerRoundTrip(t *testing.T) {
	entries := []TrailerEntry{{FileOffset: 48, UncompressedLength: 120}, {FileOffset: 200, UncompressedLength: 80}}
	buf, err := EncodeTrailer(5, 6, binary.LittleEndian, entries)
	require.NoError(t, err)

	buf.SetPosition(0)
	r, err := DecodeRecord(buf)
	require.NoError(t, err)
	require.True(t, r.Header.IsLastRecord())
	require.Equal(t, 0, r.EventCount())

	got, err := DecodeTrailerEntries(r, binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	events := [][]byte{
		event(0x00000002, 0x00010101, 0x00000007),
		event(0x00000001, 0x00020200),
	}
	buf, err := EncodeBlock(events, BlockEncodeOptions{BlockNumber: 0, Version: 4, Order: binary.LittleEndian, LastBlock: true})
	require.NoError(t, err)

	buf.SetPosition(0)
	b, err := DecodeBlock(buf)
	require.NoError(t, err)
	require.Equal(t, 2, b.EventCount())
	require.True(t, b.Header.IsLastBlock())

	for i, want := range events {
		got, err := b.Event(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
