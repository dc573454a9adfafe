package record

import (
	"encoding/binary"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/header"
)

// TrailerEntry is one (fileOffset, uncompressedLength) pair in a v6
// trailer's random-access index.
type TrailerEntry struct {
	FileOffset         uint64
	UncompressedLength uint64
}

// EncodeTrailer builds the terminating v6 trailer record: zero events, the
// last-record bit set, carrying entries as its user-header (the record has
// no events so its own per-event index array is empty).
func EncodeTrailer(recordNumber uint32, version uint8, order binary.ByteOrder, entries []TrailerEntry) (*buffer.ByteBuffer, error) {
	userHeader := make([]byte, 0, 16*len(entries))
	tmp := make([]byte, 16)
	for _, e := range entries {
		order.PutUint64(tmp[0:8], e.FileOffset)
		order.PutUint64(tmp[8:16], e.UncompressedLength)
		userHeader = append(userHeader, tmp...)
	}

	return EncodeRecord(nil, EncodeOptions{
		RecordNumber: recordNumber,
		Version:      version,
		Order:        order,
		Compression:  header.CompressNone,
		UserHeader:   userHeader,
		LastRecord:   true,
	})
}

// DecodeTrailerEntries parses a trailer record's user-header back into its
// index entries.
func DecodeTrailerEntries(r *Record, order binary.ByteOrder) ([]TrailerEntry, error) {
	buf := buffer.New(r.UserHeader).SetOrder(order)
	var entries []TrailerEntry
	for buf.Remaining() >= 16 {
		off, err := buf.GetUint64()
		if err != nil {
			return nil, err
		}
		length, err := buf.GetUint64()
		if err != nil {
			return nil, err
		}
		entries = append(entries, TrailerEntry{FileOffset: off, UncompressedLength: length})
	}
	return entries, nil
}
