package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

func TestGeoapifyGeocoder_ReverseGeocode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		wantLogs bool
	}{
		{
			name: "formatted address",
			body: `{"features":[{"properties":{"formatted":"Indian Ocean"}}]}`,
			want: "Indian Ocean",
		},
		{
			name:     "missing features",
			body:     `{"type":"FeatureCollection"}`,
			wantLogs: true,
		},
		{
			name:     "empty features",
			body:     `{"features":[]}`,
			wantLogs: true,
		},
		{
			name:     "missing formatted",
			body:     `{"features":[{"properties":{"country":"Nowhere"}}]}`,
			wantLogs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "-11.4986", q.Get("lat"))
				assert.Equal(t, "57.0169", q.Get("lon"))
				assert.Equal(t, "test-key", q.Get("apiKey"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f, logs := newTestFetcher(0)
			g := NewGeoapifyGeocoder(f, srv.URL, "test-key", f.logger)

			got, err := g.ReverseGeocode(context.Background(), "-11.4986", "57.0169")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantLogs {
				assert.Contains(t, logs.String(), "Invalid geolocation data format")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestGeoapifyGeocoder_WrongShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":{"properties":"nope"}}`))
	}))
	defer srv.Close()

	f, logs := newTestFetcher(0)
	g := NewGeoapifyGeocoder(f, srv.URL, "k", f.logger)

	got, err := g.ReverseGeocode(context.Background(), "1", "2")
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, tracker.ErrMalformedResponse))
	assert.Contains(t, logs.String(), "could not be decoded")
	assert.NotContains(t, logs.String(), "not valid JSON")
}

func TestGoogleGeocoder_ReverseGeocode(t *testing.T) {
	f, logs := newTestFetcher(0)
	g := NewGoogleGeocoder("key", f.logger)

	var gotLoc geocoder.Location
	g.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		gotLoc = loc
		return []geocoder.Address{{FormattedAddress: "Indian Ocean"}}, nil
	}

	addr, err := g.ReverseGeocode(context.Background(), "-11.4986", "57.0169")
	require.NoError(t, err)
	assert.Equal(t, "Indian Ocean", addr)
	assert.InDelta(t, -11.4986, gotLoc.Latitude, 1e-9)
	assert.InDelta(t, 57.0169, gotLoc.Longitude, 1e-9)

	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) { return nil, nil }
	addr, err = g.ReverseGeocode(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Empty(t, addr)
	assert.Contains(t, logs.String(), "Invalid geolocation data format")

	_, err = g.ReverseGeocode(context.Background(), "north", "2")
	assert.True(t, errors.Is(err, tracker.ErrMalformedResponse))
}
