package sink

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

var (
	// ErrNotFound is returned when no record matches a query.
	ErrNotFound = errors.New("no position records")
)

// Memory is a concurrency-safe in-process sink that keeps recent records
// for the watch-mode API.
type Memory struct {
	mu sync.RWMutex

	records []tracker.PositionRecord

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age relative to the newest record
}

// NewMemory creates a new Memory sink with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemory(maxHistory int, maxAge time.Duration) *Memory {
	return &Memory{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

func (m *Memory) Name() string {
	return "memory"
}

// Write appends rec and enforces retention. Empty records are ignored.
func (m *Memory) Write(_ context.Context, rec tracker.PositionRecord) error {
	if rec.IsEmpty() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)

	// Enforce retention by count.
	if m.maxHistory > 0 && len(m.records) > m.maxHistory {
		over := len(m.records) - m.maxHistory
		m.records = append([]tracker.PositionRecord(nil), m.records[over:]...)
	}

	// Enforce retention by age.
	if m.maxAge > 0 {
		cutoff := rec.Time().Add(-m.maxAge)
		i := 0
		for ; i < len(m.records); i++ {
			if !m.records[i].Time().Before(cutoff) {
				break
			}
		}
		if i > 0 {
			m.records = append([]tracker.PositionRecord(nil), m.records[i:]...)
		}
	}
	return nil
}

// Latest returns the most recently written record.
func (m *Memory) Latest() (tracker.PositionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return tracker.PositionRecord{}, ErrNotFound
	}
	return m.records[len(m.records)-1], nil
}

// Range returns all records whose epoch lies between from and to (inclusive).
func (m *Memory) Range(from, to time.Time) ([]tracker.PositionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []tracker.PositionRecord
	for _, rec := range m.records {
		ts := rec.Time()
		if !ts.Before(from) && !ts.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len reports how many records are retained.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
