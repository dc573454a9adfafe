package evio

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/header"
	"github.com/JeffersonLab/go-evio/tree"
)

// TestWriterReaderRoundTripV6 covers the S1/invariant-1 scenario: build a
// bank{tag=1,num=1,type=int32} of [1,2,3], write it uncompressed, and read
// it back structurally equal.
func TestWriterReaderRoundTripV6(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s1.evio")

	bank := tree.NewBank(1, 1, dtype.Int32)
	require.NoError(t, bank.SetInt32Data([]int32{1, 2, 3}))

	w, err := NewWriter(path, WithVersion(6), WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	require.NoError(t, w.WriteEvent(bank))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint8(6), r.GetEvioVersion())
	require.Equal(t, 1, r.GetEventCount())

	got, err := r.ParseEvent(1)
	require.NoError(t, err)
	require.True(t, bank.Equal(got))
}

// TestWriterReaderRoundTripV4 is the v4 block-framing counterpart.
func TestWriterReaderRoundTripV4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s2.evio")

	event := tree.NewBank(7, 3, dtype.Bank)
	child := tree.NewBank(8, 0, dtype.Float32)
	require.NoError(t, child.SetFloat32Data([]float32{0.0, 0.5, -0.25, 1.0}))
	require.NoError(t, event.AddChild(child))

	w, err := NewWriter(path, WithVersion(4))
	require.NoError(t, err)
	require.NoError(t, w.WriteEvent(event))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, uint8(4), r.GetEvioVersion())
	got, err := r.ParseEvent(1)
	require.NoError(t, err)
	require.True(t, event.Equal(got))
}

// TestWriterRecordSplitByByteLimit is the S4 scenario: a tight max-record
// limit forces a new record before the running total would exceed it.
func TestWriterRecordSplitByByteLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s4.evio")

	w, err := NewWriter(path, WithMaxRecordBytes(100), WithMaxEventsPerRecord(1000))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		bank := tree.NewBank(1, 0, dtype.Uint8)
		require.NoError(t, bank.SetUint8Data(make([]uint8, 24))) // 32 raw bytes incl. header
		require.NoError(t, w.WriteEvent(bank))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 10, r.GetEventCount())
	// 32 raw bytes/event and a 100-byte max-record-bytes limit flush a new
	// record before a 4th event would push the running total to 128: three
	// records of 3 events plus a trailing record of 1.
	require.Equal(t, 4, r.GetRecordCount())
}

// TestWriterWithCompression covers S2's LZ4 path: round-trip through v6
// with LZ4 compression enabled.
func TestWriterWithCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s2-lz4.evio")

	w, err := NewWriter(path, WithCompression(header.CompressLZ4))
	require.NoError(t, err)

	var events []*tree.Node
	for i := 0; i < 20; i++ {
		bank := tree.NewBank(uint16(i), 0, dtype.Float32)
		require.NoError(t, bank.SetFloat32Data([]float32{0.0, 0.5, -0.25, 1.0}))
		events = append(events, bank)
		require.NoError(t, w.WriteEvent(bank))
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, len(events), r.GetEventCount())
	for i, want := range events {
		got, err := r.ParseEvent(i + 1)
		require.NoError(t, err)
		require.True(t, want.Equal(got))
	}
}

// TestWriterDictionaryAndFirstEvent covers the leading dictionary/first
// event embedding and their exclusion from GetEventCount.
func TestWriterDictionaryAndFirstEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.evio")

	first := tree.NewBank(99, 0, dtype.Int32)
	require.NoError(t, first.SetInt32Data([]int32{42}))

	const dictXML = `<xmlDict><dictEntry name="X" tag="6" num="0"/></xmlDict>`

	w, err := NewWriter(path, WithDictionaryXML(dictXML), WithFirstEvent(first))
	require.NoError(t, err)

	bank := tree.NewBank(6, 0, dtype.Int8)
	require.NoError(t, bank.SetInt8Data([]int8{1, 2, 3}))
	require.NoError(t, w.WriteEvent(bank))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.GetEventCount())
	require.Equal(t, dictXML, r.GetDictionaryXML())
	require.NotNil(t, r.GetFirstEvent())

	got, err := r.ParseEvent(1)
	require.NoError(t, err)
	require.True(t, bank.Equal(got))
}

// TestReaderGetScannedEvent covers S6: compact-scanning an event without
// building a tree.Node, then confirming its raw bytes still match what was
// written.
func TestReaderGetScannedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s6.evio")

	bank := tree.NewBank(4, 2, dtype.Int32)
	require.NoError(t, bank.SetInt32Data([]int32{10, 20, 30}))

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteEvent(bank))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	root, nodes, err := r.GetScannedEvent(1)
	require.NoError(t, err)
	require.Equal(t, uint16(4), root.Tag)
	require.Equal(t, uint8(2), root.Num)
	require.Len(t, nodes, 1)

	raw, err := r.GetEvent(1)
	require.NoError(t, err)
	encoded, err := tree.Encode(bank, r.GetByteOrder())
	require.NoError(t, err)
	require.Equal(t, encoded, raw)
}

// TestBufferWriterRoundTrip covers in-memory output (no file splitting).
func TestBufferWriterRoundTrip(t *testing.T) {
	w, err := NewBufferWriter()
	require.NoError(t, err)

	bank := tree.NewBank(1, 1, dtype.Int32)
	require.NoError(t, bank.SetInt32Data([]int32{1, 2, 3}))
	require.NoError(t, w.WriteEvent(bank))
	require.NoError(t, w.Close())

	r, err := OpenBuffer(w.Bytes())
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.GetEventCount())
	got, err := r.ParseEvent(1)
	require.NoError(t, err)
	require.True(t, bank.Equal(got))
}
