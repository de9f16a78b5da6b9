package providers

import (
	"context"
	"fmt"
	"log"
	"net/url"
)

// DefaultGeoapifyURL is the Geoapify reverse geocoding endpoint.
const DefaultGeoapifyURL = "https://api.geoapify.com/v1/geocode/reverse"

// GeoapifyGeocoder implements tracker.Geocoder for Geoapify.
type GeoapifyGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	fetcher *Fetcher
	logger  *log.Logger
}

func NewGeoapifyGeocoder(fetcher *Fetcher, baseURL, apiKey string, logger *log.Logger) *GeoapifyGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeoapifyURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GeoapifyGeocoder{
		name:    "geoapify",
		apiKey:  apiKey,
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (g *GeoapifyGeocoder) Name() string {
	return g.name
}

type geoapifyPayload struct {
	Features []struct {
		Properties *struct {
			Formatted *string `json:"formatted"`
		} `json:"properties"`
	} `json:"features"`
}

func (g *GeoapifyGeocoder) requestURL(lat, lon string) (string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid geoapify url: %w", err)
	}
	values := u.Query()
	values.Set("lat", lat)
	values.Set("lon", lon)
	values.Set("apiKey", g.apiKey)
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// ReverseGeocode returns features[0].properties.formatted. A response
// without that path is logged and yields "" with a nil error.
func (g *GeoapifyGeocoder) ReverseGeocode(ctx context.Context, lat, lon string) (string, error) {
	u, err := g.requestURL(lat, lon)
	if err != nil {
		g.logger.Printf("ERROR: %v", err)
		return "", err
	}

	var payload geoapifyPayload
	if err := g.fetcher.FetchJSON(ctx, u, &payload); err != nil {
		return "", err
	}

	return formattedAddress(payload, g.logger), nil
}

func formattedAddress(payload geoapifyPayload, logger *log.Logger) string {
	if len(payload.Features) == 0 ||
		payload.Features[0].Properties == nil ||
		payload.Features[0].Properties.Formatted == nil {
		logger.Println("ERROR: Invalid geolocation data format")
		return ""
	}
	return *payload.Features[0].Properties.Formatted
}
