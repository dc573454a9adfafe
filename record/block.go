package record

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/utils"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Block is a decoded v4 block: header plus the contiguous event bytes that
// follow it. Unlike a v6 record, v4 blocks carry no index array or
// compression — event boundaries are discovered by walking each event's
// own bank-length word.
type Block struct {
	Header header.BlockHeader
	events [][]byte
}

// EventCount returns the number of events framed by this block.
func (b *Block) EventCount() int { return len(b.events) }

// Event returns the i-th event's serialized bytes (0-based).
func (b *Block) Event(i int) ([]byte, error) {
	if i < 0 || i >= len(b.events) {
		return nil, fmt.Errorf("%w: event %d of %d", xerr.ErrEventIndexOutOfRange, i, len(b.events))
	}
	return b.events[i], nil
}

// BlockEncodeOptions configures EncodeBlock.
type BlockEncodeOptions struct {
	BlockNumber   uint32
	Version       uint8
	Order         binary.ByteOrder
	LastBlock     bool
	HasDictionary bool
	HasFirstEvent bool
}

// EncodeBlock builds one complete v4 block: 8-word header followed by the
// given events' bytes, contiguous, uncompressed.
func EncodeBlock(events [][]byte, opts BlockEncodeOptions) (*buffer.ByteBuffer, error) {
	order := opts.Order
	if order == nil {
		order = binary.LittleEndian
	}

	payloadLen := 0
	for _, ev := range events {
		payloadLen += len(ev)
	}

	h := header.NewBlockHeader(opts.BlockNumber, opts.Version)
	h.EventCount = uint32(len(events))
	h.SetLastBlock(opts.LastBlock)
	h.SetHasDictionary(opts.HasDictionary)
	h.SetHasFirstEvent(opts.HasFirstEvent)
	h.TotalWords = header.BlockWords + uint32(payloadLen/4)

	totalBytes := int(h.TotalWords) * 4
	buf := buffer.Allocate(totalBytes).SetOrder(order)
	for _, w := range h.Encode() {
		if err := buf.PutUint32(w); err != nil {
			return nil, err
		}
	}
	for _, ev := range events {
		if err := buf.PutBytes(ev); err != nil {
			return nil, err
		}
	}
	buf.SetPosition(0)
	return buf, nil
}

// DecodeBlock parses one block starting at buf's current position. Because
// v4 carries no per-event index, it walks each event's own bank-length
// word (the first word of every event, being a bank) to find the next
// event's start.
func DecodeBlock(buf *buffer.ByteBuffer) (*Block, error) {
	var words [header.BlockWords]uint32
	for i := range words {
		w, err := buf.GetUint32()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
		}
		words[i] = w
	}
	h, err := header.DecodeBlockHeader(words)
	if err != nil {
		return nil, err
	}

	blockEnd := buf.Position() + int(h.TotalWords-header.BlockWords)*4
	b := &Block{Header: h}
	for i := uint32(0); i < h.EventCount; i++ {
		evStart := buf.Position()
		lengthWord, err := buf.GetUint32At(evStart)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d length word: %v", xerr.ErrTruncated, i, err)
		}
		evTotalWords := lengthWord + 1 // bank word0 is (total-1)
		evBytes64, err := utils.SafeMultiply(uint64(evTotalWords), 4)
		if err != nil || evBytes64 > utils.MaxRecordBytes {
			return nil, fmt.Errorf("%w: event %d declares an implausible length (%d words)", xerr.ErrMalformedHeader, i, evTotalWords)
		}
		evBytes, err := buf.GetBytes(int(evBytes64))
		if err != nil {
			return nil, fmt.Errorf("%w: event %d body: %v", xerr.ErrTruncated, i, err)
		}
		b.events = append(b.events, evBytes)
	}
	if buf.Position() != blockEnd {
		return nil, fmt.Errorf("%w: block declared %d words, events consumed to a different offset", xerr.ErrLengthMismatch, h.TotalWords)
	}
	return b, nil
}
