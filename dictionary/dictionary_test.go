package dictionary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRangeExpansionS5(t *testing.T) {
	xml := `<xmlDict><dictEntry name="X" tag="5-7" num="0"/></xmlDict>`
	d, err := Parse(strings.NewReader(xml))
	require.NoError(t, err)

	e, ok := d.Lookup(6, 0)
	require.True(t, ok)
	require.Equal(t, "X", e.Name)

	_, ok = d.Lookup(8, 0)
	require.False(t, ok)
}

func TestParseHierarchicalNames(t *testing.T) {
	xml := `<xmlDict>
		<bank name="HallD" tag="1">
			<bank name="DC" tag="2">
				<leaf name="xpos" tag="3" num="1" type="float32"/>
			</bank>
		</bank>
	</xmlDict>`
	d, err := Parse(strings.NewReader(xml))
	require.NoError(t, err)

	entry, ok := d.EntryFromName("HallD.DC.xpos")
	require.True(t, ok)
	require.Equal(t, uint16(3), entry.Key.Tag)
	require.Equal(t, uint8(1), entry.Key.Num)
}

func TestParseDuplicateTagNumRejected(t *testing.T) {
	xml := `<xmlDict>
		<dictEntry name="A" tag="5" num="0"/>
		<dictEntry name="B" tag="5" num="0"/>
	</xmlDict>`
	_, err := Parse(strings.NewReader(xml))
	require.Error(t, err)
}

func TestParseDeferredNum(t *testing.T) {
	xml := `<xmlDict><dictEntry name="Y" tag="9" num="%n"/></xmlDict>`
	d, err := Parse(strings.NewReader(xml))
	require.NoError(t, err)
	e, ok := d.EntryFromName("Y")
	require.True(t, ok)
	require.False(t, e.Key.HasNum)
}
