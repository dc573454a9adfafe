package compact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/buffer"
	"github.com/JeffersonLab/go-evio/dtype"
)

func TestCompactBuilderS1Scenario(t *testing.T) {
	buf := buffer.Allocate(64)
	b := NewBuilder(buf)
	require.NoError(t, b.OpenBank(1, 1, dtype.Int32))
	require.NoError(t, b.WriteInt32Data([]int32{1, 2, 3}))
	require.NoError(t, b.CloseAll())
	require.Equal(t, 0, b.OpenFrames())

	w0, err := buf.GetUint32At(0)
	require.NoError(t, err)
	require.Equal(t, uint32(4), w0)
	w1, err := buf.GetUint32At(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0x00010101), w1)
}

func TestCompactBuilderNested(t *testing.T) {
	buf := buffer.Allocate(64)
	b := NewBuilder(buf)
	require.NoError(t, b.OpenBank(100, 0, dtype.Bank))
	require.NoError(t, b.OpenBank(1, 1, dtype.Float32))
	require.NoError(t, b.WriteFloat32Data([]float32{0.0, 0.5, -0.25, 1.0}))
	require.NoError(t, b.CloseStructure())
	require.NoError(t, b.CloseAll())

	buf.SetPosition(0)
	nodes, err := Scan(buf)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.True(t, nodes[0].IsContainer())
	require.False(t, nodes[1].IsContainer())
	require.Equal(t, -1, nodes[0].ParentIndex)
	require.Equal(t, 0, nodes[1].ParentIndex)
	require.Equal(t, 1, nodes[0].ChildCount)
}

func TestScanPayloadBytes(t *testing.T) {
	buf := buffer.Allocate(64)
	b := NewBuilder(buf)
	require.NoError(t, b.OpenBank(1, 1, dtype.Int8))
	require.NoError(t, b.WriteInt8Data([]int8{1, 2, 3}))
	require.NoError(t, b.CloseAll())

	buf.SetPosition(0)
	nodes, err := Scan(buf)
	require.NoError(t, err)
	require.Equal(t, uint8(1), nodes[0].Padding)

	data, err := nodes[0].PayloadBytes(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestCloseStructureUnderflow(t *testing.T) {
	buf := buffer.Allocate(8)
	b := NewBuilder(buf)
	require.Error(t, b.CloseStructure())
}
