package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areeshzakir/plutus-data-warehouse/pkg/record"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background(), []string{"leads"}))
	return s
}

func lead(key string, ts time.Time) record.Reconciled {
	return record.Reconciled{
		DedupKey:     key,
		IdentityKey:  "919876543210",
		EventTime:    ts,
		HasEventTime: true,
		Attrs: map[string]record.Value{
			"phone_number": record.String("9876543210"),
			"city":         record.Null(),
		},
		Sources: []map[string]string{{"Phone Number": "+91 98765 43210"}},
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, time.August, 13, 10, 0, 0, 0, time.UTC)
	batch := []record.Reconciled{lead("a", ts), lead("b", ts)}

	res, err := s.Write(ctx, "leads", batch)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Skipped)

	res, err = s.Write(ctx, "leads", batch)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
}

func TestWriteNullEventTime(t *testing.T) {
	s := newTestStore(t)
	rec := lead("no-ts", time.Time{})
	rec.HasEventTime = false

	res, err := s.Write(context.Background(), "leads", []record.Reconciled{rec})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
}

func TestWatermarkRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetWatermark(ctx, "leads")
	require.NoError(t, err)
	assert.False(t, ok)

	ts := time.Date(2025, time.August, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetWatermark(ctx, "leads", ts))

	wm, ok, err := s.GetWatermark(ctx, "leads")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ts, wm)
}

func TestWatermarkNeverMovesBackward(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, time.August, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetWatermark(ctx, "leads", ts))
	require.NoError(t, s.SetWatermark(ctx, "leads", ts.Add(-48*time.Hour)))

	wm, ok, err := s.GetWatermark(ctx, "leads")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ts, wm)
}
