package header

import (
	"fmt"

	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// BlockWords is the fixed length, in 32-bit words, of a v4 block header.
const BlockWords = 8

// BlockMagic is the fixed magic number terminating every v4 block header,
// written in the file's byte order like every other header word. A reader
// that finds the byte-swapped value instead infers the opposite byte order
// (see Detect).
const BlockMagic uint32 = 0xc0da0100

// BlockHeader is the 8-word v4 block framing header.
type BlockHeader struct {
	TotalWords  uint32 // total words in this block, header included
	BlockNumber uint32
	HeaderWords uint32 // always BlockWords (8)
	EventCount  uint32
	Reserved1   uint32
	VersionInfo uint32 // low 8 bits version, bit8 last-block, bit9 has-dictionary, bit10 has-first-event
	Reserved2   uint32
	Magic       uint32
}

// Version-and-bitinfo field layout within VersionInfo.
const (
	bitLastBlock     = 8
	bitHasDictionary = 9
	bitHasFirstEvent = 10
)

// Version returns the low 8 bits of VersionInfo.
func (h BlockHeader) Version() uint8 { return uint8(h.VersionInfo & 0xff) }

// IsLastBlock reports whether this is the final block in the file.
func (h BlockHeader) IsLastBlock() bool { return h.VersionInfo&(1<<bitLastBlock) != 0 }

// HasDictionary reports whether the block carries a dictionary bank.
func (h BlockHeader) HasDictionary() bool { return h.VersionInfo&(1<<bitHasDictionary) != 0 }

// HasFirstEvent reports whether the block carries a first-event bank.
func (h BlockHeader) HasFirstEvent() bool { return h.VersionInfo&(1<<bitHasFirstEvent) != 0 }

// SetLastBlock sets or clears the last-block flag.
func (h *BlockHeader) SetLastBlock(v bool) { h.setBit(bitLastBlock, v) }

// SetHasDictionary sets or clears the has-dictionary flag.
func (h *BlockHeader) SetHasDictionary(v bool) { h.setBit(bitHasDictionary, v) }

// SetHasFirstEvent sets or clears the has-first-event flag.
func (h *BlockHeader) SetHasFirstEvent(v bool) { h.setBit(bitHasFirstEvent, v) }

func (h *BlockHeader) setBit(bit int, v bool) {
	if v {
		h.VersionInfo |= 1 << uint(bit)
	} else {
		h.VersionInfo &^= 1 << uint(bit)
	}
}

// DecodeBlockHeader unpacks the 8 header words, validating the magic
// number and header-words field. words must be in the reader's native
// (already byte-order-corrected) order.
func DecodeBlockHeader(words [BlockWords]uint32) (BlockHeader, error) {
	h := BlockHeader{
		TotalWords:  words[0],
		BlockNumber: words[1],
		HeaderWords: words[2],
		EventCount:  words[3],
		Reserved1:   words[4],
		VersionInfo: words[5],
		Reserved2:   words[6],
		Magic:       words[7],
	}
	if h.HeaderWords != BlockWords {
		return BlockHeader{}, fmt.Errorf("%w: block header-words field is %d, want %d", xerr.ErrMalformedHeader, h.HeaderWords, BlockWords)
	}
	if h.Magic != BlockMagic {
		return BlockHeader{}, fmt.Errorf("%w: block magic 0x%08x", xerr.ErrMagicMismatch, h.Magic)
	}
	return h, nil
}

// Encode packs the block header back into its 8 words.
func (h BlockHeader) Encode() [BlockWords]uint32 {
	return [BlockWords]uint32{
		h.TotalWords, h.BlockNumber, h.HeaderWords, h.EventCount,
		h.Reserved1, h.VersionInfo, h.Reserved2, h.Magic,
	}
}

// NewBlockHeader returns a zeroed header with HeaderWords and Magic
// pre-filled, version set, ready for a writer to fill in the rest.
func NewBlockHeader(blockNumber uint32, version uint8) BlockHeader {
	return BlockHeader{
		BlockNumber: blockNumber,
		HeaderWords: BlockWords,
		VersionInfo: uint32(version),
		Magic:       BlockMagic,
	}
}
