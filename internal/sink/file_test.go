package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

func sampleRecord() tracker.PositionRecord {
	return tracker.PositionRecord{
		Timestamp: "2024-01-06 04:19:44+00:00 (UTC)",
		Latitude:  "-11.4986",
		Longitude: "57.0169",
		Address:   "Indian Ocean",
		Epoch:     1704514784,
		RunID:     "0b5c3f9e-run",
		Source:    "ISS",
	}
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "2024-01-06 04:19:44+00:00 (UTC);ISS;-11.4986,57.0169;Indian Ocean\n", FormatLine(sampleRecord()))

	rec := sampleRecord()
	rec.Source = ""
	rec.Address = ""
	assert.Equal(t, "2024-01-06 04:19:44+00:00 (UTC);ISS;-11.4986,57.0169;\n", FormatLine(rec))
}

func TestFileSink_AppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "locations.txt")
	s := NewFileSink(path, log.New(&bytes.Buffer{}, "", 0))

	const n = 5
	for i := 0; i < n; i++ {
		rec := sampleRecord()
		rec.Address = fmt.Sprintf("place-%d", i)
		require.NoError(t, s.Write(context.Background(), rec))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, fmt.Sprintf(";place-%d", i)), "line %d = %q", i, line)
	}
}

func TestFileSink_DoesNotOverwriteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous line\n"), 0o644))

	s := NewFileSink(path, nil)
	require.NoError(t, s.Write(context.Background(), sampleRecord()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous line\n"))
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestFileSink_EmptyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.txt")
	var logs bytes.Buffer
	s := NewFileSink(path, log.New(&logs, "", 0))

	require.NoError(t, s.Write(context.Background(), tracker.PositionRecord{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, logs.String(), "INFO: No data")
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
