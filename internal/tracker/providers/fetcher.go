package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// ErrCircuitOpen is returned without contacting the upstream while the
// breaker for it is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// defaultMaxFailures is how many consecutive failures open the breaker.
const defaultMaxFailures = 5

// upstreamError carries the status and body of a rejected request.
type upstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *upstreamError) Unwrap() error {
	return tracker.ErrUpstreamHTTP
}

// Fetcher issues GET requests and decodes JSON bodies. Every failure is
// logged exactly once here; callers treat any returned error as "no data".
// Requests are never retried.
type Fetcher struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *log.Logger
}

// NewFetcher creates a Fetcher with its own breaker, so build one per
// upstream. maxFailures consecutive failures open the breaker for one
// minute; 0 selects the default.
func NewFetcher(name string, client *http.Client, logger *log.Logger, maxFailures uint32) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &Fetcher{
		client:  client,
		circuit: cb,
		logger:  logger,
	}
}

// Name returns the upstream name the breaker was created for.
func (f *Fetcher) Name() string {
	return f.circuit.Name()
}

// FetchJSON GETs rawURL and decodes the body into v.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, v any) error {
	safeURL := redactURL(rawURL)

	result, err := f.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tracker.ErrNetwork, scrubURLError(err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading body: %v", tracker.ErrNetwork, err)
		}

		if resp.StatusCode >= 400 {
			return nil, &upstreamError{URL: safeURL, StatusCode: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %s: %v", ErrCircuitOpen, safeURL, err)
		}
		f.logger.Printf("ERROR: Your request has failed because: %v", err)
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}

	if err := json.Unmarshal(body, v); err != nil {
		f.logger.Printf("ERROR: response from %s could not be decoded: %v", safeURL, err)
		return fmt.Errorf("%w: %v", tracker.ErrMalformedResponse, err)
	}
	return nil
}

// redactURL hides credentials carried as query parameters.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, key := range []string{"apiKey", "apikey", "key"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func scrubURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s %s: %v", uerr.Op, redactURL(uerr.URL), uerr.Err)
	}
	return err
}
