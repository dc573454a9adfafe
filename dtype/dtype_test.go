package dtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElementWidth(t *testing.T) {
	w, err := ElementWidth(Int32)
	require.NoError(t, err)
	require.Equal(t, 4, w)

	w, err = ElementWidth(Int8)
	require.NoError(t, err)
	require.Equal(t, 1, w)

	_, err = ElementWidth(Bank)
	require.Error(t, err)
}

func TestIsContainer(t *testing.T) {
	require.True(t, IsContainer(Bank))
	require.True(t, IsContainer(Segment2))
	require.False(t, IsContainer(Int32))
}

func TestNameUnknown(t *testing.T) {
	require.Equal(t, "unknown", Name(Type(0x3f)))
	require.False(t, IsKnown(Type(0x3f)))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "bank", KindBank.String())
	require.Equal(t, "tagsegment", KindTagsegment.String())
}
