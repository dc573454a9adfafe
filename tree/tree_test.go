package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/dtype"
)

func TestBuilderS1Scenario(t *testing.T) {
	b := NewBuilder(1, 1, dtype.Int32)
	event := b.GetEvent()
	require.NoError(t, event.SetInt32Data([]int32{1, 2, 3}))
	require.NoError(t, b.CloseAll())

	words, err := event.Normalize()
	require.NoError(t, err)
	require.Equal(t, uint32(5), words) // 2 header words + 3 payload words
}

func TestBuilderNestedBankOfBanks(t *testing.T) {
	b := NewBuilder(100, 0, dtype.Bank)
	child, err := b.OpenBank(1, 1, dtype.Float32)
	require.NoError(t, err)
	require.NoError(t, child.SetFloat32Data([]float32{0.0, 0.5, -0.25, 1.0}))
	require.NoError(t, b.CloseStructure())
	require.NoError(t, b.CloseAll())

	words, err := b.GetEvent().Normalize()
	require.NoError(t, err)
	require.Equal(t, uint32(2+2+4), words)
}

func TestAddChildTypeMismatch(t *testing.T) {
	root := NewBank(1, 0, dtype.Bank)
	leaf := NewSegment(2, dtype.Int32)
	err := root.AddChild(leaf)
	require.Error(t, err)
}

func TestSetDataWrongType(t *testing.T) {
	n := NewBank(1, 0, dtype.Int32)
	err := n.SetFloat32Data([]float32{1})
	require.Error(t, err)
}

func TestPaddingForNonAlignedLeaf(t *testing.T) {
	n := NewBank(1, 0, dtype.Int8)
	require.NoError(t, n.SetInt8Data([]int8{1, 2, 3}))
	_, err := n.Normalize()
	require.NoError(t, err)
	require.Equal(t, uint8(1), n.Padding)
}

func TestEqualStructuralComparison(t *testing.T) {
	a := NewBank(1, 1, dtype.Int32)
	require.NoError(t, a.SetInt32Data([]int32{1, 2, 3}))
	b := NewBank(1, 1, dtype.Int32)
	require.NoError(t, b.SetInt32Data([]int32{1, 2, 3}))
	require.True(t, a.Equal(b))

	require.NoError(t, b.SetInt32Data([]int32{1, 2, 4}))
	require.False(t, a.Equal(b))
}

func TestCloseStructureUnderflow(t *testing.T) {
	b := NewBuilder(1, 0, dtype.Bank)
	require.Error(t, b.CloseStructure())
}
