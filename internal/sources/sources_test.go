package sources

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	raws, err := DecodeCSV(strings.NewReader(
		" Name ,Phone Number,City\nAsha,9876543210,Mumbai\nRavi,9876543211,Pune\n"))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, []string{"Name", "Phone Number", "City"}, raws[0].Columns,
		"header cells trimmed")
	assert.Equal(t, "Asha", raws[0].Values["Name"])
	assert.Equal(t, "Pune", raws[1].Values["City"])
}

func TestDecodeCSVRaggedRows(t *testing.T) {
	raws, err := DecodeCSV(strings.NewReader(
		"a,b,c\n1,2\n1,2,3,4\n"))
	require.NoError(t, err)
	require.Len(t, raws, 2)

	_, ok := raws[0].Values["c"]
	assert.False(t, ok, "short row leaves trailing columns absent")
	assert.Equal(t, "3", raws[1].Values["c"], "surplus cells dropped")
}

func TestDecodeCSVEmptyStream(t *testing.T) {
	raws, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestDecodeCSVHeaderOnly(t *testing.T) {
	raws, err := DecodeCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, raws)
}
