// Package sink holds the destinations a tracked position can be persisted to.
// Every sink acquires and releases its resources inside Write.
package sink

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// FileSink appends one semicolon-delimited line per record.
type FileSink struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

func NewFileSink(path string, logger *log.Logger) *FileSink {
	if logger == nil {
		logger = log.Default()
	}
	return &FileSink{path: path, logger: logger}
}

func (s *FileSink) Name() string {
	return "file"
}

// FormatLine renders "<timestamp>;<source>;<lat>,<long>;<address>\n".
func FormatLine(rec tracker.PositionRecord) string {
	source := rec.Source
	if source == "" {
		source = tracker.DefaultSourceTag
	}
	return fmt.Sprintf("%s;%s;%s,%s;%s\n", rec.Timestamp, source, rec.Latitude, rec.Longitude, rec.Address)
}

// Write appends rec to the file. An empty record is logged and skipped.
func (s *FileSink) Write(_ context.Context, rec tracker.PositionRecord) (err error) {
	if rec.IsEmpty() {
		s.logger.Println("INFO: No data")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create locations directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open locations file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close locations file: %w", cerr)
		}
	}()

	if _, err := f.WriteString(FormatLine(rec)); err != nil {
		return fmt.Errorf("append to locations file: %w", err)
	}
	return f.Sync()
}
