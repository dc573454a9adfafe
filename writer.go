package evio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/compress"
	"github.com/JeffersonLab/go-evio/internal/compress/pool"
	"github.com/JeffersonLab/go-evio/internal/xerr"
	"github.com/JeffersonLab/go-evio/record"
)

// Writer accepts events, batches them into records (v6) or blocks (v4), and
// flushes them to a file or in-memory buffer, optionally splitting output
// across multiple files by size (§4.H).
type Writer struct {
	mu     sync.Mutex
	closed bool
	poison error // first error seen; subsequent calls fail fast until Close

	pathTemplate string
	isBuffer     bool
	bufOut       *bytes.Buffer
	sink         sink

	version uint8
	hipo    bool
	order   binary.ByteOrder

	maxRecordBytes     int
	maxEventsPerRecord int
	maxFileBytes       int64

	dictionaryXML   string
	firstEventBytes []byte

	overwrite      bool
	appendExisting bool

	streamID       int
	splitNumber    uint32
	splitIncrement uint32

	compression        header.CompressionType
	compressionThreads int
	ringSize           int
	pool               *pool.Pool

	recordNumber uint32 // v6 running record counter across the whole writer
	blockNumber  uint32 // v4 running block counter across the whole writer

	pending      [][]byte
	pendingBytes int
	needLeading  bool // next flush must embed dictionary/first-event

	trailerEntries []record.TrailerEntry // v6 only, reset per file segment

	metaMu    sync.Mutex
	metaQueue []recordMeta
}

// recordMeta is the per-record bookkeeping the compression pool's write
// step needs once a record's payload has finished compressing; see
// record.EncodePreparedRecord.
type recordMeta struct {
	eventLengths    []uint32
	uncompressedLen int
	opts            record.EncodeOptions
}

const (
	defaultMaxRecordBytes     = 8 << 20
	defaultMaxEventsPerRecord = 100000
	defaultSplitIncrement     = 1
)

// NewWriter opens pathTemplate for writing (a printf-style path carrying up
// to two "%d" verbs: stream id and split number) and returns a ready Writer.
func NewWriter(pathTemplate string, opts ...WriterOption) (*Writer, error) {
	w, err := newWriter(opts...)
	if err != nil {
		return nil, err
	}
	w.pathTemplate = pathTemplate
	if err := w.openSegment(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewBufferWriter accumulates output in memory; Bytes returns the current
// contents after Close. File splitting is not supported for buffer output.
func NewBufferWriter(opts ...WriterOption) (*Writer, error) {
	w, err := newWriter(opts...)
	if err != nil {
		return nil, err
	}
	if w.maxFileBytes > 0 {
		return nil, fmt.Errorf("evio: WithMaxFileBytes is not supported for buffer output")
	}
	w.isBuffer = true
	w.bufOut = &bytes.Buffer{}
	w.sink = &bufferSink{buf: w.bufOut}
	w.needLeading = true
	if err := w.writeFileHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func newWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		version:            6,
		order:              binary.LittleEndian,
		maxRecordBytes:     defaultMaxRecordBytes,
		maxEventsPerRecord: defaultMaxEventsPerRecord,
		splitIncrement:     defaultSplitIncrement,
		compressionThreads: 1,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if w.overwrite && w.appendExisting {
		return nil, fmt.Errorf("evio: WithOverwrite and WithAppend are mutually exclusive")
	}
	if w.ringSize == 0 {
		w.ringSize = 2 * w.compressionThreads
	}
	if w.version == 6 && w.compression != header.CompressNone && w.compressionThreads > 1 {
		w.pool = pool.New(w.compressionThreads, w.ringSize, w.poolCompress, w.poolWrite)
	}
	return w, nil
}

// currentPath expands the path template with the writer's stream id and
// split number, per however many "%d" verbs the template declares.
func (w *Writer) currentPath() string {
	switch strings.Count(w.pathTemplate, "%d") {
	case 0:
		return w.pathTemplate
	case 1:
		return fmt.Sprintf(w.pathTemplate, w.splitNumber)
	default:
		return fmt.Sprintf(w.pathTemplate, w.streamID, w.splitNumber)
	}
}

// openSegment opens the next output file (or, for the very first segment,
// the only one) and writes its file header if applicable.
func (w *Writer) openSegment() error {
	path := w.currentPath()
	fs, err := openFileSink(path, w.overwrite, w.appendExisting)
	if err != nil {
		return err
	}
	w.sink = fs
	w.trailerEntries = nil
	w.needLeading = !w.appendExisting

	if w.appendExisting {
		return nil
	}
	return w.writeFileHeader()
}

// writeFileHeader emits the 14-word v6 file header (no-op for v4, which has
// no file-level header, or when the writer is configured to append).
func (w *Writer) writeFileHeader() error {
	if w.version != 6 {
		return nil
	}
	fh := header.NewFileHeader(w.splitNumber, 6, w.hipo)
	words := fh.Encode()
	buf := make([]byte, header.FileHeaderWords*4)
	for i, word := range words {
		w.order.PutUint32(buf[i*4:i*4+4], word)
	}
	if _, err := w.sink.Write(buf); err != nil {
		return fmt.Errorf("evio: write file header: %w", err)
	}
	return nil
}

// WriteEvent appends one event (a *tree.Node or an already-encoded []byte)
// to the current in-flight record/block, flushing first if adding it would
// exceed either the size or event-count limit.
func (w *Writer) WriteEvent(ev interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkUsable(); err != nil {
		return err
	}

	encoded, err := eventBytes(ev, w.order)
	if err != nil {
		return w.fail(err)
	}

	if len(w.pending) > 0 && (w.pendingBytes+len(encoded) > w.maxRecordBytes || len(w.pending)+1 > w.maxEventsPerRecord) {
		if err := w.flushLocked(); err != nil {
			return w.fail(err)
		}
	}

	w.pending = append(w.pending, encoded)
	w.pendingBytes += len(encoded)
	return nil
}

// Flush finalizes the current record/block without splitting.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkUsable(); err != nil {
		return err
	}
	if err := w.flushLocked(); err != nil {
		return w.fail(err)
	}
	if w.pool != nil {
		if err := w.pool.Drain(); err != nil {
			return w.fail(err)
		}
	}
	return nil
}

// Close flushes any in-flight record, drains the compression pool,
// finalizes the current file (a v6 trailer or a v4 empty last block), and
// closes the underlying sink. Close is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	collect := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if w.poison == nil {
		collect(w.flushLocked())
		if w.pool != nil {
			collect(w.pool.Drain())
		}
		collect(w.finalizeSegment())
	}
	if w.pool != nil {
		collect(w.pool.Close())
	}
	collect(w.sink.Close())
	return firstErr
}

// Bytes returns the accumulated output of an in-memory writer. Valid after
// Close (or at any point, reflecting bytes flushed so far).
func (w *Writer) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bufOut == nil {
		return nil
	}
	return w.bufOut.Bytes()
}

func (w *Writer) checkUsable() error {
	if w.closed {
		return xerr.ErrWriterClosed
	}
	if w.poison != nil {
		return w.poison
	}
	return nil
}

func (w *Writer) fail(err error) error {
	if w.poison == nil {
		w.poison = err
	}
	return err
}

// flushLocked assembles the pending events (plus any leading dictionary/
// first-event synthetic events, if this is the first flush of a segment)
// into one record or block and writes it, then checks whether a file split
// is now due. Caller holds w.mu.
func (w *Writer) flushLocked() error {
	events, hasDict, hasFirst, err := w.assembleLeading()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	w.pending = nil
	w.pendingBytes = 0

	if w.version == 4 {
		if err := w.flushBlock(events, hasDict, hasFirst); err != nil {
			return err
		}
	} else {
		if err := w.flushRecord(events, hasDict, hasFirst); err != nil {
			return err
		}
	}

	if w.maxFileBytes > 0 && !w.isBuffer && w.sink.Offset() >= w.maxFileBytes {
		return w.split()
	}
	return nil
}

// assembleLeading prepends the dictionary/first-event synthetic events to
// the pending batch if this segment's leading events haven't been emitted
// yet, returning the flags the record/block header should carry.
func (w *Writer) assembleLeading() (events [][]byte, hasDict, hasFirst bool, err error) {
	if !w.needLeading {
		return w.pending, false, false, nil
	}
	w.needLeading = false

	var leading [][]byte
	if w.dictionaryXML != "" {
		enc, encErr := encodeDictionaryEvent(w.dictionaryXML, w.order)
		if encErr != nil {
			return nil, false, false, encErr
		}
		leading = append(leading, enc)
		hasDict = true
	}
	if w.firstEventBytes != nil {
		leading = append(leading, w.firstEventBytes)
		hasFirst = true
	}
	if len(leading) == 0 {
		return w.pending, false, false, nil
	}
	return append(leading, w.pending...), hasDict, hasFirst, nil
}

func (w *Writer) flushBlock(events [][]byte, hasDict, hasFirst bool) error {
	buf, err := record.EncodeBlock(events, record.BlockEncodeOptions{
		BlockNumber:   w.blockNumber,
		Version:       w.version,
		Order:         w.order,
		HasDictionary: hasDict,
		HasFirstEvent: hasFirst,
	})
	if err != nil {
		return err
	}
	w.blockNumber++
	_, err = w.sink.Write(buf.Bytes())
	return err
}

// flushRecord frames one v6 record and writes it. With a compression pool
// configured, only compression is offloaded to a worker; the actual write
// (and the trailer-index bookkeeping that depends on its file offset) still
// happens on the pool's single sequencer goroutine, in submission order, in
// poolWrite.
func (w *Writer) flushRecord(events [][]byte, hasDict, hasFirst bool) error {
	opts := record.EncodeOptions{
		RecordNumber:  w.recordNumber,
		Version:       w.version,
		Order:         w.order,
		Compression:   w.compression,
		HasDictionary: hasDict,
		HasFirstEvent: hasFirst,
	}
	w.recordNumber++

	if w.pool != nil {
		eventLengths := make([]uint32, len(events))
		raw := make([]byte, 0, w.pendingRawLen(events))
		for i, ev := range events {
			eventLengths[i] = uint32(len(ev))
			raw = append(raw, ev...)
		}
		w.metaMu.Lock()
		w.metaQueue = append(w.metaQueue, recordMeta{eventLengths: eventLengths, uncompressedLen: len(raw), opts: opts})
		w.metaMu.Unlock()
		return w.pool.Submit(raw)
	}

	offset := w.sink.Offset()
	buf, err := record.EncodeRecord(events, opts)
	if err != nil {
		return err
	}
	if _, err := w.sink.Write(buf.Bytes()); err != nil {
		return err
	}
	w.trailerEntries = append(w.trailerEntries, record.TrailerEntry{
		FileOffset:         uint64(offset),
		UncompressedLength: uint64(w.pendingRawLen(events)),
	})
	return nil
}

func (w *Writer) pendingRawLen(events [][]byte) int {
	n := 0
	for _, ev := range events {
		n += len(ev)
	}
	return n
}

// poolCompress is the pool's CompressFunc: it runs on a worker goroutine.
func (w *Writer) poolCompress(raw []byte) ([]byte, error) {
	if w.compression == header.CompressNone {
		return raw, nil
	}
	out, err := compress.Compress(w.compression, raw)
	if err != nil {
		return nil, err
	}
	return record.PadTo4(out), nil
}

// poolWrite is the pool's WriteFunc, invoked strictly in submission order on
// the pool's sequencer goroutine with no lock held: it finishes framing (now
// that the compressed length is known) and performs the single write,
// capturing this record's file offset for the trailer index at the moment
// it is actually accurate.
func (w *Writer) poolWrite(index int, compressed []byte) error {
	w.metaMu.Lock()
	meta := w.metaQueue[0]
	w.metaQueue = w.metaQueue[1:]
	w.metaMu.Unlock()

	offset := w.sink.Offset()
	buf, err := record.EncodePreparedRecord(meta.eventLengths, meta.uncompressedLen, compressed, meta.opts)
	if err != nil {
		return err
	}
	if _, err := w.sink.Write(buf.Bytes()); err != nil {
		return err
	}
	w.trailerEntries = append(w.trailerEntries, record.TrailerEntry{
		FileOffset:         uint64(offset),
		UncompressedLength: uint64(meta.uncompressedLen),
	})
	return nil
}

// finalizeSegment writes the terminating marker for the current file
// segment: a v6 trailer record, or a v4 empty last block.
func (w *Writer) finalizeSegment() error {
	if w.version == 4 {
		buf, err := record.EncodeBlock(nil, record.BlockEncodeOptions{
			BlockNumber: w.blockNumber,
			Version:     w.version,
			Order:       w.order,
			LastBlock:   true,
		})
		if err != nil {
			return err
		}
		w.blockNumber++
		_, err = w.sink.Write(buf.Bytes())
		return err
	}

	buf, err := record.EncodeTrailer(w.recordNumber, w.version, w.order, w.trailerEntries)
	if err != nil {
		return err
	}
	w.recordNumber++
	_, err = w.sink.Write(buf.Bytes())
	return err
}

// split closes the current file segment (trailer/last-block) and opens the
// next one, advancing the split number and re-emitting the file header,
// dictionary and first-event at the start of the new segment.
func (w *Writer) split() error {
	if w.pool != nil {
		if err := w.pool.Drain(); err != nil {
			return err
		}
	}
	if err := w.finalizeSegment(); err != nil {
		return err
	}
	if err := w.sink.Close(); err != nil {
		return err
	}
	w.splitNumber += w.splitIncrement
	return w.openSegment()
}
