package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JeffersonLab/go-evio/header"
)

func TestNoneRoundTrip(t *testing.T) {
	in := []byte("hello evio")
	out, err := Compress(header.CompressNone, in)
	require.NoError(t, err)
	require.Equal(t, in, out)

	back, err := Decompress(header.CompressNone, out, len(in))
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestLZ4RoundTrip(t *testing.T) {
	in := make([]byte, 4096)
	for i := range in {
		in[i] = byte(i % 7)
	}
	compressed, err := Compress(header.CompressLZ4, in)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(in))

	back, err := Decompress(header.CompressLZ4, compressed, len(in))
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestGzipRoundTrip(t *testing.T) {
	in := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	compressed, err := Compress(header.CompressGzip, in)
	require.NoError(t, err)

	back, err := Decompress(header.CompressGzip, compressed, len(in))
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestUnsupportedCompressionType(t *testing.T) {
	_, err := Compress(header.CompressionType(99), []byte("x"))
	require.Error(t, err)
}
