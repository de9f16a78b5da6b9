package sink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

func recordAt(epoch int64) tracker.PositionRecord {
	rec := sampleRecord()
	rec.Epoch = epoch
	rec.Timestamp = tracker.UnixToUTCString(epoch)
	return rec
}

func TestMemory_LatestAndRange(t *testing.T) {
	m := NewMemory(0, 0)
	ctx := context.Background()

	_, err := m.Latest()
	assert.ErrorIs(t, err, ErrNotFound)

	for _, epoch := range []int64{100, 200, 300} {
		require.NoError(t, m.Write(ctx, recordAt(epoch)))
	}

	latest, err := m.Latest()
	require.NoError(t, err)
	assert.Equal(t, int64(300), latest.Epoch)

	got, err := m.Range(time.Unix(150, 0), time.Unix(300, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(200), got[0].Epoch)
	assert.Equal(t, int64(300), got[1].Epoch)

	_, err = m.Range(time.Unix(400, 0), time.Unix(500, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Retention(t *testing.T) {
	ctx := context.Background()

	byCount := NewMemory(2, 0)
	for _, epoch := range []int64{1, 2, 3} {
		require.NoError(t, byCount.Write(ctx, recordAt(epoch)))
	}
	assert.Equal(t, 2, byCount.Len())
	got, err := byCount.Range(time.Unix(0, 0), time.Unix(10, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), got[0].Epoch)

	byAge := NewMemory(0, time.Minute)
	require.NoError(t, byAge.Write(ctx, recordAt(1000)))
	require.NoError(t, byAge.Write(ctx, recordAt(1050)))
	require.NoError(t, byAge.Write(ctx, recordAt(1100)))
	assert.Equal(t, 2, byAge.Len())
}

func TestMemory_IgnoresEmpty(t *testing.T) {
	m := NewMemory(0, 0)
	require.NoError(t, m.Write(context.Background(), tracker.PositionRecord{}))
	assert.Equal(t, 0, m.Len())
}
