package buffer

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_PutGetRoundTrip(t *testing.T) {
	b := Allocate(16)
	require.NoError(t, b.PutUint32(0xdeadbeef))
	require.NoError(t, b.PutUint16(0x1234))
	require.NoError(t, b.PutByte(0x7f))

	b.SetPosition(0)
	v32, err := b.GetUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v32)

	v16, err := b.GetUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), v16)

	v8, err := b.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), v8)
}

func TestByteBuffer_BigEndianOrder(t *testing.T) {
	b := Allocate(4).SetOrder(binary.BigEndian)
	require.NoError(t, b.PutUint32(1))
	require.Equal(t, []byte{0, 0, 0, 1}, b.Bytes())
}

func TestByteBuffer_OutOfBounds(t *testing.T) {
	b := Allocate(2)
	_, err := b.GetUint32At(0)
	require.Error(t, err)
}

func TestByteBuffer_FlipRewind(t *testing.T) {
	b := Allocate(8)
	require.NoError(t, b.PutUint32(1))
	require.NoError(t, b.PutUint32(2))
	b.Flip()
	require.Equal(t, 0, b.Position())
	require.Equal(t, 8, b.Limit())

	v, err := b.GetUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(1), v)

	b.Rewind()
	require.Equal(t, 0, b.Position())
}

func TestByteBuffer_DuplicateIndependentPosition(t *testing.T) {
	b := Allocate(8)
	require.NoError(t, b.PutUint32(1))
	dup := b.Duplicate()
	require.NoError(t, dup.PutUint32(2))
	require.Equal(t, 4, b.Position())
	require.Equal(t, 8, dup.Position())
}

func TestByteBuffer_AsReadOnlyRejectsWrites(t *testing.T) {
	b := Allocate(4)
	ro := b.AsReadOnly()
	require.Error(t, ro.PutUint32(1))
}

func TestByteBuffer_Float32RoundTrip(t *testing.T) {
	b := Allocate(4)
	require.NoError(t, b.PutFloat32(0.5))
	b.SetPosition(0)
	v, err := b.GetFloat32()
	require.NoError(t, err)
	require.InDelta(t, 0.5, v, 1e-9)
}
