package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// Multi writes each record to every wrapped sink in order. A failing sink
// does not stop the ones after it; the failures are joined.
type Multi struct {
	sinks []tracker.Sink
}

func NewMulti(sinks ...tracker.Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *Multi) Write(ctx context.Context, rec tracker.PositionRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
