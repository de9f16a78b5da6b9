// Package logging builds the single logger the tracker injects into every
// stage. Lines go to both a log file and stderr and are stamped as
// "2006-01-02 03:04:05 PM: ".
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 03:04:05 PM"

// stampWriter prefixes each write with the current local time.
type stampWriter struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func (w *stampWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.out, "%s: ", w.now().Format(timeLayout)); err != nil {
		return 0, err
	}
	return w.out.Write(p)
}

// NewWriterLogger returns a logger stamping lines written to out.
func NewWriterLogger(out io.Writer) *log.Logger {
	return log.New(&stampWriter{out: out, now: time.Now}, "", 0)
}

// New opens (or creates) path for appending and returns a logger writing to
// it and to stderr. An empty path logs to stderr only. The returned closer
// releases the file.
func New(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return NewWriterLogger(os.Stderr), io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return NewWriterLogger(io.MultiWriter(f, os.Stderr)), f, nil
}
