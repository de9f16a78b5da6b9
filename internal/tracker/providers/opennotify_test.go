package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

func TestOpenNotifyProvider_FetchPosition(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    tracker.Position
		wantErr bool
	}{
		{
			name: "complete payload",
			body: `{"message":"success","timestamp":1704514784,"iss_position":{"latitude":"-11.4986","longitude":"57.0169"}}`,
			want: tracker.Position{Timestamp: 1704514784, Latitude: "-11.4986", Longitude: "57.0169"},
		},
		{
			name:    "missing timestamp",
			body:    `{"iss_position":{"latitude":"-11.4986","longitude":"57.0169"}}`,
			wantErr: true,
		},
		{
			name:    "missing iss_position",
			body:    `{"timestamp":1704514784}`,
			wantErr: true,
		},
		{
			name:    "missing longitude",
			body:    `{"timestamp":1704514784,"iss_position":{"latitude":"-11.4986"}}`,
			wantErr: true,
		},
		{
			name:    "empty object",
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f, logs := newTestFetcher(0)
			p := NewOpenNotifyProvider(f, srv.URL, f.logger)

			got, err := p.FetchPosition(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tracker.ErrMalformedResponse))
				assert.Equal(t, 1, strings.Count(logs.String(), "ERROR:"))
				assert.Contains(t, logs.String(), "Invalid ISS data format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhereTheISSProvider_FetchPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"iss","id":25544,"latitude":-11.4986,"longitude":57.0169,"timestamp":1704514784}`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(0)
	p := NewWhereTheISSProvider(f, srv.URL, f.logger)

	got, err := p.FetchPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tracker.Position{Timestamp: 1704514784, Latitude: "-11.4986", Longitude: "57.0169"}, got)
	assert.Equal(t, "wheretheiss", p.Name())
}

func TestWhereTheISSProvider_MissingKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latitude":-11.4986}`))
	}))
	defer srv.Close()

	f, logs := newTestFetcher(0)
	p := NewWhereTheISSProvider(f, srv.URL, f.logger)

	_, err := p.FetchPosition(context.Background())
	assert.True(t, errors.Is(err, tracker.ErrMalformedResponse))
	assert.Contains(t, logs.String(), "Invalid ISS data format")
}
