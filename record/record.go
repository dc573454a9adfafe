// Package record implements the v6 record and v4 block framing codec:
// encode/decode of the index array, optional user-header, and event
// payload area, with optional compression of the payload area.
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/compress"
	"github.com/JeffersonLab/go-evio/internal/utils"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Record is a decoded v6 record: its header, its own user-header bytes,
// and an index over its events' byte offsets within the (decompressed)
// payload area, giving O(1) random access to any one of them.
type Record struct {
	Header     header.RecordHeader
	UserHeader []byte
	payload    []byte // decompressed event-payload area
	offsets    []int  // start offset of each event within payload
	lengths    []int  // byte length of each event
}

// EventCount returns the number of events framed by this record.
func (r *Record) EventCount() int { return len(r.offsets) }

// Event returns the i-th event's serialized bytes (0-based), aliasing the
// record's internal payload buffer.
func (r *Record) Event(i int) ([]byte, error) {
	if i < 0 || i >= len(r.offsets) {
		return nil, fmt.Errorf("%w: event %d of %d", xerr.ErrEventIndexOutOfRange, i, len(r.offsets))
	}
	start := r.offsets[i]
	return r.payload[start : start+r.lengths[i]], nil
}

// EncodeOptions configures EncodeRecord.
type EncodeOptions struct {
	RecordNumber uint32
	Version      uint8
	Order        binary.ByteOrder
	Compression  header.CompressionType
	UserHeader   []byte // raw bytes, padded here to a 4-byte boundary
	LastRecord   bool
	HasDictionary bool
	HasFirstEvent bool
	UserRegister1 uint64
	UserRegister2 uint64
}

// EncodeRecord builds one complete v6 record: 14-word header, index array
// (never compressed — needed for random access), optional user-header
// (padded to 4 bytes), and the event payload area (optionally compressed).
func EncodeRecord(events [][]byte, opts EncodeOptions) (*buffer.ByteBuffer, error) {
	eventLengths := make([]uint32, len(events))
	payloadLen := 0
	for i, ev := range events {
		eventLengths[i] = uint32(len(ev))
		payloadLen += len(ev)
	}
	payload := make([]byte, 0, payloadLen)
	for _, ev := range events {
		payload = append(payload, ev...)
	}

	var payloadOut []byte
	if opts.Compression == header.CompressNone {
		payloadOut = payload
	} else {
		compressed, err := compress.Compress(opts.Compression, payload)
		if err != nil {
			return nil, err
		}
		payloadOut = PadTo4(compressed)
	}

	return EncodePreparedRecord(eventLengths, len(payload), payloadOut, opts)
}

// EncodePreparedRecord frames a record whose event payload has already been
// compressed (or left raw, for CompressNone) by the caller. Splitting this
// from EncodeRecord lets the writer's compression pool run the compression
// itself on a worker goroutine while the single I/O thread only pays for
// the cheap header/index assembly that follows — header fields such as the
// compressed-word count cannot be known until compression completes, so
// this step can never run before it.
func EncodePreparedRecord(eventLengths []uint32, uncompressedLen int, payloadOut []byte, opts EncodeOptions) (*buffer.ByteBuffer, error) {
	order := opts.Order
	if order == nil {
		order = binary.LittleEndian
	}

	indexBytes := make([]byte, 4*len(eventLengths))
	for i, l := range eventLengths {
		order.PutUint32(indexBytes[i*4:i*4+4], l)
	}
	userHeader := PadTo4(opts.UserHeader)

	h := header.NewRecordHeader(opts.RecordNumber, opts.Version)
	h.EventCount = uint32(len(eventLengths))
	h.IndexArrayBytes = uint32(len(indexBytes))
	h.UserHeaderBytes = uint32(len(userHeader))
	h.UncompressedBytes = uint32(uncompressedLen)
	h.UserRegister1 = opts.UserRegister1
	h.UserRegister2 = opts.UserRegister2
	h.SetLastRecord(opts.LastRecord)
	h.SetHasDictionary(opts.HasDictionary)
	h.SetHasFirstEvent(opts.HasFirstEvent)
	if opts.Compression != header.CompressNone {
		h.CompressedWords = header.PackCompressedWords(opts.Compression, uint32(len(payloadOut)/4))
	}

	totalBytes := header.RecordWords*4 + len(indexBytes) + len(userHeader) + len(payloadOut)
	h.RecordLengthWords = uint32(totalBytes / 4)

	buf := buffer.Allocate(totalBytes).SetOrder(order)
	for _, w := range h.Encode() {
		if err := buf.PutUint32(w); err != nil {
			return nil, err
		}
	}
	if err := buf.PutBytes(indexBytes); err != nil {
		return nil, err
	}
	if err := buf.PutBytes(userHeader); err != nil {
		return nil, err
	}
	if err := buf.PutBytes(payloadOut); err != nil {
		return nil, err
	}
	buf.SetPosition(0)
	return buf, nil
}

// DecodeRecord parses one record starting at buf's current position,
// leaving buf positioned just past the record on success.
func DecodeRecord(buf *buffer.ByteBuffer) (*Record, error) {
	var words [header.RecordWords]uint32
	for i := range words {
		w, err := buf.GetUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
		}
		words[i] = w
	}
	h, err := header.DecodeRecordHeader(words)
	if err != nil {
		return nil, err
	}

	indexBytes, err := buf.GetBytes(int(h.IndexArrayBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: index array: %v", xerr.ErrTruncated, err)
	}
	userHeader, err := buf.GetBytes(int(h.UserHeaderBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: user header: %v", xerr.ErrTruncated, err)
	}

	if h.UncompressedBytes > utils.MaxRecordBytes {
		return nil, fmt.Errorf("%w: record uncompressed payload %d exceeds %d", xerr.ErrMalformedHeader, h.UncompressedBytes, utils.MaxRecordBytes)
	}

	var payload []byte
	kind := h.CompressionKind()
	if kind == header.CompressNone {
		payload, err = buf.GetBytes(int(h.UncompressedBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: payload: %v", xerr.ErrTruncated, err)
		}
	} else {
		compressedBytes, err2 := buf.GetBytes(int(h.CompressedLengthWords()) * 4)
		if err2 != nil {
			return nil, fmt.Errorf("%w: compressed payload: %v", xerr.ErrTruncated, err2)
		}
		payload, err = compress.Decompress(kind, compressedBytes, int(h.UncompressedBytes))
		if err != nil {
			return nil, err
		}
		if len(payload) != int(h.UncompressedBytes) {
			payload = payload[:h.UncompressedBytes]
		}
	}

	r := &Record{Header: h, UserHeader: userHeader, payload: payload}
	offset := 0
	idx := buffer.New(indexBytes).SetOrder(buf.Order())
	for i := 0; i < int(h.EventCount); i++ {
		length, err := idx.GetUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: index entry %d: %v", xerr.ErrTruncated, i, err)
		}
		r.offsets = append(r.offsets, offset)
		r.lengths = append(r.lengths, int(length))
		offset += int(length)
	}
	if offset != len(payload) {
		return nil, fmt.Errorf("%w: index sums to %d bytes, payload is %d", xerr.ErrLengthMismatch, offset, len(payload))
	}

	return r, nil
}

// PadTo4 right-pads b with zero bytes to the next 4-byte boundary, shared
// by the framing codec here and by callers (e.g. a writer's compression
// pool) that prepare a payload ahead of EncodePreparedRecord.
func PadTo4(b []byte) []byte {
	if len(b)%4 == 0 {
		return b
	}
	pad := 4 - len(b)%4
	out := make([]byte, len(b)+pad)
	copy(out, b)
	return out
}
