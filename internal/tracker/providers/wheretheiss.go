package providers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// DefaultWhereTheISSURL reports the ISS (NORAD id 25544) on wheretheiss.at.
const DefaultWhereTheISSURL = "https://api.wheretheiss.at/v1/satellites/25544"

// WhereTheISSProvider implements tracker.PositionSource for wheretheiss.at,
// whose response is flat and carries numeric coordinates.
type WhereTheISSProvider struct {
	name    string
	url     string
	fetcher *Fetcher
	logger  *log.Logger
}

func NewWhereTheISSProvider(fetcher *Fetcher, url string, logger *log.Logger) *WhereTheISSProvider {
	if url == "" {
		url = DefaultWhereTheISSURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WhereTheISSProvider{
		name:    "wheretheiss",
		url:     url,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *WhereTheISSProvider) Name() string {
	return p.name
}

type whereTheISSPayload struct {
	Timestamp *int64   `json:"timestamp"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (p *WhereTheISSProvider) FetchPosition(ctx context.Context) (tracker.Position, error) {
	var payload whereTheISSPayload
	if err := p.fetcher.FetchJSON(ctx, p.url, &payload); err != nil {
		return tracker.Position{}, err
	}

	if payload.Timestamp == nil || payload.Latitude == nil || payload.Longitude == nil {
		err := fmt.Errorf("%w: timestamp, latitude and longitude are required", tracker.ErrMalformedResponse)
		p.logger.Printf("ERROR: Invalid ISS data format: %v", err)
		return tracker.Position{}, err
	}

	return tracker.Position{
		Timestamp: *payload.Timestamp,
		Latitude:  strconv.FormatFloat(*payload.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(*payload.Longitude, 'f', -1, 64),
	}, nil
}
