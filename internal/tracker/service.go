package tracker

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Service runs the fetch -> parse -> geocode -> write pipeline once per call.
type Service struct {
	source    PositionSource
	geocoder  Geocoder
	sink      Sink
	logger    *log.Logger
	sourceTag string
	newRunID  func() string
}

// Option customises a Service.
type Option func(*Service)

// WithSourceTag overrides the tag stamped on every record (default "ISS").
func WithSourceTag(tag string) Option {
	return func(s *Service) {
		if tag != "" {
			s.sourceTag = tag
		}
	}
}

// WithRunIDFunc replaces the run id generator.
func WithRunIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// NewService creates a new Service. A nil geocoder skips address lookup and
// a nil logger falls back to log.Default().
func NewService(source PositionSource, geocoder Geocoder, sink Sink, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		source:    source,
		geocoder:  geocoder,
		sink:      sink,
		logger:    logger,
		sourceTag: DefaultSourceTag,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track fetches the current position and enriches it with an address.
// A failed or malformed position fetch yields an empty record and ErrNoData.
// A failed address lookup is tolerated: the record keeps an empty address.
func (s *Service) Track(ctx context.Context) (PositionRecord, error) {
	pos, elapsed, err := Timed(func() (Position, error) {
		return s.source.FetchPosition(ctx)
	})
	if err != nil {
		return PositionRecord{}, fmt.Errorf("%w: %s: %w", ErrNoData, s.source.Name(), err)
	}
	s.logger.Printf("DEBUG: %s position fetched in %s", s.source.Name(), elapsed)

	rec := ParsePosition(pos)
	rec.RunID = s.newRunID()
	rec.Source = s.sourceTag

	if s.geocoder == nil {
		return rec, nil
	}

	// Geocoders log their own failures; the record is persisted without an address.
	addr, err := s.geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
	if err == nil {
		rec.Address = addr
	}
	return rec, nil
}

// FetchAndStore runs the whole pipeline and hands the record to the sink.
// It returns ErrNoData when nothing was persisted because the position was
// unavailable, and ErrSinkWrite when the sink rejected the record.
func (s *Service) FetchAndStore(ctx context.Context) (PositionRecord, error) {
	rec, err := s.Track(ctx)
	if err != nil || rec.IsEmpty() {
		s.logger.Println("INFO: No data")
		if err == nil {
			err = ErrNoData
		}
		return PositionRecord{}, err
	}

	if s.sink == nil {
		return rec, nil
	}

	if err := s.sink.Write(ctx, rec); err != nil {
		s.logger.Printf("ERROR: failed to write record to %s: %v", s.sink.Name(), err)
		return rec, fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	s.logger.Printf("INFO: %s;%s,%s;%s", rec.Timestamp, rec.Latitude, rec.Longitude, rec.Address)
	return rec, nil
}
