package evio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/compact"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/internal/bufpool"
	"github.com/JeffersonLab/go-evio/internal/xerr"
	"github.com/JeffersonLab/go-evio/record"
	"github.com/JeffersonLab/go-evio/tree"
)

// segment is one record (v6) or block (v4) the reader has indexed: its file
// offset, and how many user-visible events it holds (excluding any leading
// dictionary/first-event synthetic entries in segment 0).
type segment struct {
	offset      int64
	rawCount    int // events actually framed, including any leading synthetic ones
	publicCount int // rawCount minus leading synthetic events, for segment 0 only
}

// Reader provides sequential and random-access reading of a v4 or v6 evio
// container (§4.I): it indexes record/block offsets and cumulative event
// counts at Open time, then decodes one record at a time on demand.
type Reader struct {
	mu     sync.Mutex
	closed bool

	ra     io.ReaderAt
	closer io.Closer

	format header.Format
	order  binary.ByteOrder
	hipo   bool
	version uint8

	segments   []segment
	cumulative []int // cumulative[i] = total public events through segments[i]

	leadingCount    int // 0, 1 or 2 synthetic events at the head of segments[0]
	dictionaryXML   string
	firstEventBytes []byte

	cachedIndex  int
	cachedRecord *record.Record
	cachedBlock  *record.Block
	haveCache    bool

	position int // 1-based cursor for NextEvent/ParseNextEvent, 0 before the first call
}

// Open indexes the evio container at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evio: open %q: %w", path, err)
	}
	r, err := newReader(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// OpenBuffer indexes an in-memory evio container.
func OpenBuffer(data []byte) (*Reader, error) {
	return newReader(bytes.NewReader(data), nil)
}

func newReader(ra io.ReaderAt, closer io.Closer) (*Reader, error) {
	head := make([]byte, 32)
	if _, err := ra.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("%w: reading leading 32 bytes: %v", xerr.ErrTruncated, err)
	}
	det, err := header.Detect(head)
	if err != nil {
		return nil, err
	}

	r := &Reader{ra: ra, closer: closer, format: det.Format, order: det.Order, hipo: det.HIPO}
	if det.Format == header.FormatV6Record {
		r.version = 6
		if err := r.indexV6(); err != nil {
			return nil, err
		}
	} else {
		r.version = 4
		if err := r.indexV4(); err != nil {
			return nil, err
		}
	}
	if err := r.extractLeading(); err != nil {
		return nil, err
	}
	r.buildCumulative()
	return r, nil
}

func (r *Reader) readBytesAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.ra.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	return buf, nil
}

func (r *Reader) readRecordHeaderAt(offset int64) (header.RecordHeader, error) {
	raw := bufpool.Get(header.RecordWords * 4)
	defer bufpool.Release(raw)
	if _, err := r.ra.ReadAt(raw, offset); err != nil {
		return header.RecordHeader{}, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	var words [header.RecordWords]uint32
	for i := range words {
		words[i] = r.order.Uint32(raw[i*4 : i*4+4])
	}
	return header.DecodeRecordHeader(words)
}

// indexV6 decodes the file header, then builds the record index either by
// peeking each record's event-count word via the trailer's offset index
// (O(1) per record, no decompression) or, lacking a trailer, by walking
// record headers sequentially.
func (r *Reader) indexV6() error {
	raw := bufpool.Get(header.FileHeaderWords * 4)
	_, err := r.ra.ReadAt(raw, 0)
	if err != nil {
		bufpool.Release(raw)
		return fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	var words [header.FileHeaderWords]uint32
	for i := range words {
		words[i] = r.order.Uint32(raw[i*4 : i*4+4])
	}
	bufpool.Release(raw)
	fh, err := header.DecodeFileHeader(words)
	if err != nil {
		return err
	}
	r.hipo = fh.IsHIPO()

	firstRecordOffset := int64(header.FileHeaderWords*4) + int64(align4(int(fh.UserHeaderBytes))) + int64(align4(int(fh.IndexArrayBytes)))

	if fh.TrailerPosition != 0 {
		return r.indexV6ViaTrailer(int64(fh.TrailerPosition))
	}
	return r.indexV6Sequential(firstRecordOffset)
}

func (r *Reader) indexV6ViaTrailer(trailerOffset int64) error {
	th, err := r.readRecordHeaderAt(trailerOffset)
	if err != nil {
		return err
	}
	userHeader := bufpool.Get(int(th.UserHeaderBytes))
	if _, err := r.ra.ReadAt(userHeader, trailerOffset+int64(header.RecordWords*4+int(th.IndexArrayBytes))); err != nil {
		bufpool.Release(userHeader)
		return fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	trailerRecord := &record.Record{Header: th, UserHeader: userHeader}
	entries, err := record.DecodeTrailerEntries(trailerRecord, r.order)
	bufpool.Release(userHeader)
	if err != nil {
		return err
	}

	for _, e := range entries {
		h, err := r.readRecordHeaderAt(int64(e.FileOffset))
		if err != nil {
			return err
		}
		r.segments = append(r.segments, segment{offset: int64(e.FileOffset), rawCount: int(h.EventCount), publicCount: int(h.EventCount)})
	}
	return nil
}

func (r *Reader) indexV6Sequential(start int64) error {
	offset := start
	for {
		h, err := r.readRecordHeaderAt(offset)
		if err != nil {
			return err
		}
		if h.IsLastRecord() {
			return nil
		}
		r.segments = append(r.segments, segment{offset: offset, rawCount: int(h.EventCount), publicCount: int(h.EventCount)})
		offset += int64(h.RecordLengthWords) * 4
	}
}

func (r *Reader) indexV4() error {
	offset := int64(0)
	for {
		raw := bufpool.Get(header.BlockWords * 4)
		_, err := r.ra.ReadAt(raw, offset)
		if err != nil {
			bufpool.Release(raw)
			return fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
		}
		var words [header.BlockWords]uint32
		for i := range words {
			words[i] = r.order.Uint32(raw[i*4 : i*4+4])
		}
		bufpool.Release(raw)
		h, err := header.DecodeBlockHeader(words)
		if err != nil {
			return err
		}
		if h.EventCount > 0 || !h.IsLastBlock() {
			r.segments = append(r.segments, segment{offset: offset, rawCount: int(h.EventCount), publicCount: int(h.EventCount)})
		}
		if h.IsLastBlock() {
			return nil
		}
		offset += int64(h.TotalWords) * 4
	}
}

// extractLeading decodes segment 0 fully (the only segment this reader ever
// decodes eagerly) to recover a configured dictionary and/or first event,
// and adjusts its public event count accordingly.
func (r *Reader) extractLeading() error {
	if len(r.segments) == 0 {
		return nil
	}
	hasDict, hasFirst, events, err := r.decodeSegmentFlags(0)
	if err != nil {
		return err
	}
	idx := 0
	if hasDict {
		d, derr := tree.Decode(buffer.New(events[idx]).SetOrder(r.order))
		if derr != nil {
			return derr
		}
		if len(d.Data.Strings) > 0 {
			r.dictionaryXML = d.Data.Strings[0]
		}
		idx++
		r.leadingCount++
	}
	if hasFirst {
		r.firstEventBytes = events[idx]
		r.leadingCount++
	}
	r.segments[0].publicCount = r.segments[0].rawCount - r.leadingCount
	return nil
}

func (r *Reader) decodeSegmentFlags(i int) (hasDict, hasFirst bool, events [][]byte, err error) {
	if r.version == 6 {
		rec, err := r.loadRecord(i)
		if err != nil {
			return false, false, nil, err
		}
		out := make([][]byte, rec.EventCount())
		for k := range out {
			out[k], err = rec.Event(k)
			if err != nil {
				return false, false, nil, err
			}
		}
		return rec.Header.HasDictionary(), rec.Header.HasFirstEvent(), out, nil
	}
	blk, err := r.loadBlock(i)
	if err != nil {
		return false, false, nil, err
	}
	out := make([][]byte, blk.EventCount())
	for k := range out {
		out[k], err = blk.Event(k)
		if err != nil {
			return false, false, nil, err
		}
	}
	return blk.Header.HasDictionary(), blk.Header.HasFirstEvent(), out, nil
}

func (r *Reader) buildCumulative() {
	r.cumulative = make([]int, len(r.segments))
	sum := 0
	for i, s := range r.segments {
		sum += s.publicCount
		r.cumulative[i] = sum
	}
}

func align4(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}

// GetEventCount returns the total number of user-visible events (the
// embedded dictionary/first event, if any, are not counted).
func (r *Reader) GetEventCount() int {
	if len(r.cumulative) == 0 {
		return 0
	}
	return r.cumulative[len(r.cumulative)-1]
}

// GetRecordCount returns the number of physical records (v6) or blocks
// (v4) the file was split into, independent of how many user-visible
// events each one carries.
func (r *Reader) GetRecordCount() int { return len(r.segments) }

// GetEvioVersion returns 4 or 6.
func (r *Reader) GetEvioVersion() uint8 { return r.version }

// GetByteOrder returns the detected byte order.
func (r *Reader) GetByteOrder() binary.ByteOrder { return r.order }

// GetDictionaryXML returns the embedded dictionary's XML text, or "" if none.
func (r *Reader) GetDictionaryXML() string { return r.dictionaryXML }

// GetFirstEvent returns the embedded first event's encoded bytes, or nil.
func (r *Reader) GetFirstEvent() []byte { return r.firstEventBytes }

// GetEvent returns the 1-based i-th event's serialized bytes.
func (r *Reader) GetEvent(i int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getEventLocked(i)
}

func (r *Reader) getEventLocked(i int) ([]byte, error) {
	if r.closed {
		return nil, xerr.ErrReaderClosed
	}
	if i < 1 || i > r.GetEventCount() {
		return nil, fmt.Errorf("%w: event %d of %d", xerr.ErrEventIndexOutOfRange, i, r.GetEventCount())
	}
	segIdx := sort.Search(len(r.cumulative), func(k int) bool { return r.cumulative[k] >= i })
	priorPublic := 0
	if segIdx > 0 {
		priorPublic = r.cumulative[segIdx-1]
	}
	localIdx := i - priorPublic - 1
	if segIdx == 0 {
		localIdx += r.leadingCount
	}

	if r.version == 6 {
		rec, err := r.loadRecord(segIdx)
		if err != nil {
			return nil, err
		}
		return rec.Event(localIdx)
	}
	blk, err := r.loadBlock(segIdx)
	if err != nil {
		return nil, err
	}
	return blk.Event(localIdx)
}

// ParseEvent returns the 1-based i-th event parsed into an object tree.
func (r *Reader) ParseEvent(i int) (*tree.Node, error) {
	raw, err := r.GetEvent(i)
	if err != nil {
		return nil, err
	}
	return tree.Decode(buffer.New(raw).SetOrder(r.order))
}

// GetScannedEvent returns the 1-based i-th event as a compact node
// descriptor vector (§4.J) rather than a constructed tree, for callers
// that only need to route or forward the event unparsed.
func (r *Reader) GetScannedEvent(i int) (compact.Node, []compact.Node, error) {
	raw, err := r.GetEvent(i)
	if err != nil {
		return compact.Node{}, nil, err
	}
	cr := compact.NewReader(buffer.New(raw).SetOrder(r.order), []int{0})
	return cr.GetScannedEvent(0)
}

// NextEvent returns the next event in forward iteration order, or nil at
// end of stream.
func (r *Reader) NextEvent() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.position >= r.GetEventCount() {
		return nil, nil
	}
	r.position++
	return r.getEventLocked(r.position)
}

// ParseNextEvent is NextEvent followed by a parse, or nil at end of stream.
func (r *Reader) ParseNextEvent() (*tree.Node, error) {
	raw, err := r.NextEvent()
	if err != nil || raw == nil {
		return nil, err
	}
	return tree.Decode(buffer.New(raw).SetOrder(r.order))
}

// Rewind resets forward iteration to just before the first event.
func (r *Reader) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = 0
}

// GoToEventNumber positions forward iteration so the next NextEvent call
// returns event n (1-based).
func (r *Reader) GoToEventNumber(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = n - 1
}

// Position returns the 1-based event number the next NextEvent call will
// return.
func (r *Reader) Position() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position + 1
}

// loadRecord decodes segment i (v6) if it is not already the single cached
// record, per the reader's at-most-one-decoded-record-in-memory policy.
func (r *Reader) loadRecord(i int) (*record.Record, error) {
	if r.haveCache && r.cachedIndex == i && r.cachedRecord != nil {
		return r.cachedRecord, nil
	}
	s := r.segments[i]
	raw, err := r.readBytesAt(s.offset, int(recordSpanBytes(s, r)))
	if err != nil {
		return nil, err
	}
	buf := buffer.New(raw).SetOrder(r.order)
	rec, err := record.DecodeRecord(buf)
	if err != nil {
		return nil, err
	}
	r.cachedIndex = i
	r.cachedRecord = rec
	r.cachedBlock = nil
	r.haveCache = true
	return rec, nil
}

// recordSpanBytes determines how many bytes to read for segment i: its
// header's own RecordLengthWords field, read first.
func recordSpanBytes(s segment, r *Reader) int64 {
	h, err := r.readRecordHeaderAt(s.offset)
	if err != nil {
		return int64(header.RecordWords) * 4
	}
	return int64(h.RecordLengthWords) * 4
}

func (r *Reader) loadBlock(i int) (*record.Block, error) {
	if r.haveCache && r.cachedIndex == i && r.cachedBlock != nil {
		return r.cachedBlock, nil
	}
	s := r.segments[i]
	hdrRaw := bufpool.Get(header.BlockWords * 4)
	if _, err := r.ra.ReadAt(hdrRaw, s.offset); err != nil {
		bufpool.Release(hdrRaw)
		return nil, fmt.Errorf("%w: %v", xerr.ErrTruncated, err)
	}
	var words [header.BlockWords]uint32
	for k := range words {
		words[k] = r.order.Uint32(hdrRaw[k*4 : k*4+4])
	}
	bufpool.Release(hdrRaw)
	h, err := header.DecodeBlockHeader(words)
	if err != nil {
		return nil, err
	}
	raw, err := r.readBytesAt(s.offset, int(h.TotalWords)*4)
	if err != nil {
		return nil, err
	}
	buf := buffer.New(raw).SetOrder(r.order)
	blk, err := record.DecodeBlock(buf)
	if err != nil {
		return nil, err
	}
	r.cachedIndex = i
	r.cachedBlock = blk
	r.cachedRecord = nil
	r.haveCache = true
	return blk, nil
}

// Close releases the underlying file handle, if any. Closing a
// buffer-backed reader is a no-op beyond marking it closed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
