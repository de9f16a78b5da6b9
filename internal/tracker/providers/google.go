package providers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// GoogleGeocoder implements tracker.Geocoder on top of the Google Maps
// reverse geocoding API.
type GoogleGeocoder struct {
	name    string
	logger  *log.Logger
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder configures the package-level key used by kelvins/geocoder.
func NewGoogleGeocoder(apiKey string, logger *log.Logger) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	if logger == nil {
		logger = log.Default()
	}
	return &GoogleGeocoder{
		name:    "google",
		logger:  logger,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// ReverseGeocode ignores ctx: kelvins/geocoder has no context support and
// relies on its own client timeout.
func (g *GoogleGeocoder) ReverseGeocode(_ context.Context, lat, lon string) (string, error) {
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		g.logger.Printf("ERROR: invalid latitude %q: %v", lat, err)
		return "", fmt.Errorf("%w: latitude %q", tracker.ErrMalformedResponse, lat)
	}
	lonF, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		g.logger.Printf("ERROR: invalid longitude %q: %v", lon, err)
		return "", fmt.Errorf("%w: longitude %q", tracker.ErrMalformedResponse, lon)
	}

	addresses, err := g.reverse(geocoder.Location{Latitude: latF, Longitude: lonF})
	if err != nil {
		g.logger.Printf("ERROR: Your request has failed because: %v", err)
		return "", fmt.Errorf("%w: google reverse geocoding: %v", tracker.ErrUpstreamHTTP, err)
	}

	if len(addresses) == 0 || addresses[0].FormattedAddress == "" {
		g.logger.Println("ERROR: Invalid geolocation data format")
		return "", nil
	}
	return addresses[0].FormattedAddress, nil
}
