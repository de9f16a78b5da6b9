package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/iss-tracker/internal/sink"
	"github.com/i474232898/iss-tracker/internal/tracker"
)

func newTestApp(t *testing.T, epochs ...int64) *fiber.App {
	t.Helper()

	mem := sink.NewMemory(10, 0)
	for _, epoch := range epochs {
		rec := tracker.PositionRecord{
			Timestamp: tracker.UnixToUTCString(epoch),
			Latitude:  "-11.4986",
			Longitude: "57.0169",
			Address:   "Indian Ocean",
			Epoch:     epoch,
		}
		if err := mem.Write(context.Background(), rec); err != nil {
			t.Fatalf("seed memory sink: %v", err)
		}
	}

	app := fiber.New()
	RegisterRoutes(app, mem)
	return app
}

func do(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestLatestPosition(t *testing.T) {
	resp, _ := do(t, newTestApp(t), "/api/v1/positions/latest")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp, body := do(t, newTestApp(t, 1704514784, 1704514844), "/api/v1/positions/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var rec tracker.PositionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Epoch != 1704514844 || rec.Timestamp != "2024-01-06 04:20:44+00:00 (UTC)" {
		t.Fatalf("unexpected latest record: %+v", rec)
	}
}

// TestPositionsRangeValidation verifies that the range endpoint requires a
// well-formed, ordered from/to pair.
func TestPositionsRangeValidation(t *testing.T) {
	app := newTestApp(t, 1704514784)

	cases := []struct {
		name   string
		target string
	}{
		{"missing params", "/api/v1/positions"},
		{"missing to", "/api/v1/positions?from=1704514700"},
		{"garbage time", "/api/v1/positions?from=yesterday&to=1704514800"},
		{"to before from", "/api/v1/positions?from=1704514800&to=1704514700"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := do(t, app, tc.target)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}
		})
	}
}

func TestPositionsRange(t *testing.T) {
	app := newTestApp(t, 1704514784, 1704514844, 1704514904)

	from := time.Unix(1704514800, 0).UTC().Format(time.RFC3339)
	resp, body := do(t, app, "/api/v1/positions?from="+from+"&to=1704514904")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}

	var out struct {
		Count     int                      `json:"count"`
		Positions []tracker.PositionRecord `json:"positions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || len(out.Positions) != 2 || out.Positions[0].Epoch != 1704514844 {
		t.Fatalf("unexpected range result: %+v", out)
	}

	resp, _ = do(t, app, "/api/v1/positions?from=1&to=2")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("1704514784")
	if err != nil || !got.Equal(time.Unix(1704514784, 0)) {
		t.Fatalf("unix seconds: got %v, %v", got, err)
	}
	got, err = parseTime("2024-01-06T04:19:44Z")
	if err != nil || got.Unix() != 1704514784 {
		t.Fatalf("rfc3339: got %v, %v", got, err)
	}
	if _, err := parseTime("06/01/2024"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}
