package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

func TestExactKeepsFirstOccurrence(t *testing.T) {
	recs := []record.Clean{
		{DedupKey: "a", Attrs: map[string]record.Value{"n": record.String("1")}},
		{DedupKey: "b"},
		{DedupKey: "a", Attrs: map[string]record.Value{"n": record.String("2")}},
		{DedupKey: "a"},
	}

	kept, removed := Exact(recs)

	require.Len(t, kept, 2)
	assert.Equal(t, 2, removed)
	assert.Equal(t, "a", kept[0].DedupKey)
	assert.Equal(t, record.String("1"), kept[0].Attrs["n"], "first representative wins")
	assert.Equal(t, "b", kept[1].DedupKey)
}

func TestExactEmptyBatch(t *testing.T) {
	kept, removed := Exact(nil)
	assert.Empty(t, kept)
	assert.Zero(t, removed)
}
