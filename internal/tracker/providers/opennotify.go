package providers

import (
	"context"
	"fmt"
	"log"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// DefaultOpenNotifyURL is the Open Notify "ISS now" endpoint.
const DefaultOpenNotifyURL = "http://api.open-notify.org/iss-now.json"

// OpenNotifyProvider implements tracker.PositionSource for Open Notify.
type OpenNotifyProvider struct {
	name    string
	url     string
	fetcher *Fetcher
	logger  *log.Logger
}

func NewOpenNotifyProvider(fetcher *Fetcher, url string, logger *log.Logger) *OpenNotifyProvider {
	if url == "" {
		url = DefaultOpenNotifyURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OpenNotifyProvider{
		name:    "open-notify",
		url:     url,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *OpenNotifyProvider) Name() string {
	return p.name
}

// openNotifyPayload uses pointers so absent keys can be told apart from
// zero values.
type openNotifyPayload struct {
	Timestamp   *int64 `json:"timestamp"`
	ISSPosition *struct {
		Latitude  *string `json:"latitude"`
		Longitude *string `json:"longitude"`
	} `json:"iss_position"`
}

func (p *OpenNotifyProvider) FetchPosition(ctx context.Context) (tracker.Position, error) {
	var payload openNotifyPayload
	if err := p.fetcher.FetchJSON(ctx, p.url, &payload); err != nil {
		return tracker.Position{}, err
	}

	pos, err := parseOpenNotify(payload)
	if err != nil {
		p.logger.Printf("ERROR: Invalid ISS data format: %v", err)
		return tracker.Position{}, err
	}
	return pos, nil
}

func parseOpenNotify(payload openNotifyPayload) (tracker.Position, error) {
	switch {
	case payload.Timestamp == nil:
		return tracker.Position{}, fmt.Errorf("%w: missing timestamp", tracker.ErrMalformedResponse)
	case payload.ISSPosition == nil:
		return tracker.Position{}, fmt.Errorf("%w: missing iss_position", tracker.ErrMalformedResponse)
	case payload.ISSPosition.Latitude == nil:
		return tracker.Position{}, fmt.Errorf("%w: missing iss_position.latitude", tracker.ErrMalformedResponse)
	case payload.ISSPosition.Longitude == nil:
		return tracker.Position{}, fmt.Errorf("%w: missing iss_position.longitude", tracker.ErrMalformedResponse)
	}

	return tracker.Position{
		Timestamp: *payload.Timestamp,
		Latitude:  *payload.ISSPosition.Latitude,
		Longitude: *payload.ISSPosition.Longitude,
	}, nil
}
