package evio

import (
	"encoding/binary"
	"fmt"

	"github.com/JeffersonLab/go-evio/header"
)

// WriterOption configures a Writer at construction, mirroring the
// functional-options pattern used throughout this module.
type WriterOption func(*Writer) error

// WithVersion selects the container generation: 4 (block-oriented) or 6
// (record-oriented). Defaults to 6.
func WithVersion(version uint8) WriterOption {
	return func(w *Writer) error {
		if version != 4 && version != 6 {
			return fmt.Errorf("evio: unsupported writer version %d", version)
		}
		w.version = version
		return nil
	}
}

// WithHIPO marks a v6 file's file header with the HIPO type code instead of
// the plain evio one. Ignored for v4.
func WithHIPO(hipo bool) WriterOption {
	return func(w *Writer) error {
		w.hipo = hipo
		return nil
	}
}

// WithByteOrder sets the on-disk byte order. Defaults to little-endian.
func WithByteOrder(order binary.ByteOrder) WriterOption {
	return func(w *Writer) error {
		w.order = order
		return nil
	}
}

// WithMaxRecordBytes bounds a record/block's (uncompressed) payload size; a
// writeEvent that would exceed it flushes the current record first. A
// single event larger than the limit is still emitted alone.
func WithMaxRecordBytes(n int) WriterOption {
	return func(w *Writer) error {
		if n <= 0 {
			return fmt.Errorf("evio: max record bytes must be positive, got %d", n)
		}
		w.maxRecordBytes = n
		return nil
	}
}

// WithMaxEventsPerRecord bounds the event count per record/block.
func WithMaxEventsPerRecord(n int) WriterOption {
	return func(w *Writer) error {
		if n <= 0 {
			return fmt.Errorf("evio: max events per record must be positive, got %d", n)
		}
		w.maxEventsPerRecord = n
		return nil
	}
}

// WithDictionaryXML embeds dictXML as the first (synthetic) event of every
// file segment, with the record/block's has-dictionary bit set.
func WithDictionaryXML(dictXML string) WriterOption {
	return func(w *Writer) error {
		w.dictionaryXML = dictXML
		return nil
	}
}

// WithFirstEvent embeds ev (a *tree.Node or already-encoded []byte) as a
// synthetic leading event re-emitted at the start of every split file, with
// the record/block's has-first-event bit set.
func WithFirstEvent(ev interface{}) WriterOption {
	return func(w *Writer) error {
		encoded, err := eventBytes(ev, w.order)
		if err != nil {
			return err
		}
		w.firstEventBytes = encoded
		return nil
	}
}

// WithOverwrite allows NewWriter to truncate an existing file at path. Mutually
// exclusive with WithAppend.
func WithOverwrite(overwrite bool) WriterOption {
	return func(w *Writer) error {
		w.overwrite = overwrite
		return nil
	}
}

// WithAppend opens path for append rather than create-exclusive or
// truncate. No dictionary/first-event/header is re-emitted for an appended
// segment.
func WithAppend(appendExisting bool) WriterOption {
	return func(w *Writer) error {
		w.appendExisting = appendExisting
		return nil
	}
}

// WithMaxFileBytes splits output across multiple files once a flushed
// record/block has brought the current file to n bytes or more (so a file
// can end up larger than n by its last record/block): the writer closes the
// current file (emitting
// its trailer/last-block marker) and opens the next with an incremented
// split suffix, re-emitting the file header, dictionary and first-event.
// Splitting is only meaningful for path-based output.
func WithMaxFileBytes(n int64) WriterOption {
	return func(w *Writer) error {
		if n <= 0 {
			return fmt.Errorf("evio: max file bytes must be positive, got %d", n)
		}
		w.maxFileBytes = n
		return nil
	}
}

// WithSplitNumberSeed sets the starting value substituted into the path
// template's split-number "%d" verb.
func WithSplitNumberSeed(seed uint32) WriterOption {
	return func(w *Writer) error {
		w.splitNumber = seed
		return nil
	}
}

// WithSplitIncrement sets the amount the split number advances each time a
// new file segment is opened. Defaults to 1.
func WithSplitIncrement(incr uint32) WriterOption {
	return func(w *Writer) error {
		if incr == 0 {
			return fmt.Errorf("evio: split increment must be positive")
		}
		w.splitIncrement = incr
		return nil
	}
}

// WithStreamID sets the stream identifier substituted into a multi-stream
// path template's leading "%d" verb (used together with the split number
// in a two-verb template, e.g. "run_%d.%d.evio").
func WithStreamID(id int) WriterOption {
	return func(w *Writer) error {
		w.streamID = id
		return nil
	}
}

// WithCompression sets the bulk codec applied to each record's event
// payload area (v6 only; v4 blocks are never compressed).
func WithCompression(kind header.CompressionType) WriterOption {
	return func(w *Writer) error {
		w.compression = kind
		return nil
	}
}

// WithCompressionThreads sets the worker-pool size backing compression.
// Defaults to 1 (compression runs inline on the writer goroutine).
func WithCompressionThreads(n int) WriterOption {
	return func(w *Writer) error {
		if n < 1 {
			return fmt.Errorf("evio: compression threads must be at least 1, got %d", n)
		}
		w.compressionThreads = n
		return nil
	}
}

// WithRingSize sets the bounded record-buffer ring's slot count backing the
// compression worker pool (§5). Defaults to 2x the thread count.
func WithRingSize(n int) WriterOption {
	return func(w *Writer) error {
		if n < 1 {
			return fmt.Errorf("evio: ring size must be at least 1, got %d", n)
		}
		w.ringSize = n
		return nil
	}
}
