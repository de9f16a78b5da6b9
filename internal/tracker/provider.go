package tracker

import (
	"context"
	"errors"
)

var (
	// ErrUpstreamHTTP is returned when an upstream API answers with status >= 400.
	ErrUpstreamHTTP = errors.New("upstream http error")
	// ErrNetwork is returned when the upstream could not be reached.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when a response lacks the expected keys.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoData is returned by a run that produced no record.
	ErrNoData = errors.New("no data")
	// ErrSinkWrite is returned when persisting the record failed.
	ErrSinkWrite = errors.New("sink write failed")
)

// PositionSource abstracts an API reporting the station's current position
// (e.g. Open Notify, wheretheiss.at).
type PositionSource interface {
	Name() string
	// FetchPosition returns ErrMalformedResponse when required keys are
	// missing, after logging it.
	FetchPosition(ctx context.Context) (Position, error)
}

// Geocoder turns a latitude/longitude pair into a formatted address.
// Implementations log their own failures and return "" with a nil error
// when the response carries no usable address.
type Geocoder interface {
	Name() string
	ReverseGeocode(ctx context.Context, lat, lon string) (string, error)
}

// Sink persists one record. Implementations acquire and release any
// connection inside Write.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec PositionRecord) error
}
