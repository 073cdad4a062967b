// Package openweather fetches air pollution data from the OpenWeatherMap
// air_pollution API, with retry and circuit breaking around every call.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/aireclaro/aireclaro/internal/reading"
)

// Predefined errors for provider calls.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("openweather: circuit breaker is open")

	// ErrBadStatus is returned on a non-retryable error response.
	ErrBadStatus = errors.New("openweather: unexpected response status")
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ClientConfig holds configuration for the provider client.
type ClientConfig struct {
	// APIKey authenticates every request.
	APIKey string

	// BaseURL overrides the API root, for tests.
	BaseURL string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration

	// BreakerTimeout is the open-state period before probing again.
	// Default: 60 seconds
	BreakerTimeout time.Duration
}

// Client calls the air_pollution endpoints. Transient failures (5xx, network
// errors) are retried with exponential backoff; sustained failure trips the
// circuit breaker so a dead upstream is not hammered.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a new provider client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Current fetches the latest pollution record for a coordinate, normalized
// for the given location ID.
func (c *Client) Current(ctx context.Context, locationID string, lat, lon float64) (reading.Reading, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("appid", c.config.APIKey)

	records, err := c.fetch(ctx, "/air_pollution", q)
	if err != nil {
		return reading.Reading{}, err
	}
	if len(records) == 0 {
		return reading.Reading{}, fmt.Errorf("%w: empty record list", ErrBadStatus)
	}

	return reading.Normalize(locationID, records[0])
}

// History fetches the pollution records of a coordinate between start and
// end, normalized for the given location ID. Records that fail normalization
// are dropped; the provider occasionally backfills rows with no timestamp.
func (c *Client) History(ctx context.Context, locationID string, lat, lon float64, start, end time.Time) ([]reading.Reading, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("end", strconv.FormatInt(end.Unix(), 10))
	q.Set("appid", c.config.APIKey)

	records, err := c.fetch(ctx, "/air_pollution/history", q)
	if err != nil {
		return nil, err
	}

	readings := make([]reading.Reading, 0, len(records))
	for _, raw := range records {
		rec, err := reading.Normalize(locationID, raw)
		if err != nil {
			continue
		}
		readings = append(readings, rec)
	}
	return readings, nil
}

// pollutionResponse mirrors the provider's wire format: a record list where
// the ordinal AQI sits under "main" and concentrations under "components".
type pollutionResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI json.Number `json:"aqi"`
		} `json:"main"`
		Components map[string]json.Number `json:"components"`
	} `json:"list"`
}

// fetch performs one resilient GET and flattens the response into raw
// records keyed by the canonical field names.
func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]reading.Raw, error) {
	u := c.config.BaseURL + path + "?" + q.Encode()

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var resp pollutionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openweather: decode response: %w", err)
	}

	records := make([]reading.Raw, 0, len(resp.List))
	for _, item := range resp.List {
		raw := reading.Raw{
			reading.FieldTimestamp: item.Dt,
			reading.FieldAQI:       item.Main.AQI,
		}
		for _, p := range reading.Pollutants() {
			if v, ok := item.Components[string(p)]; ok {
				raw[string(p)] = v
			}
		}
		records = append(records, raw)
	}
	return records, nil
}

// serverError marks a 5xx so the breaker counts it as a failure.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "openweather: server error: " + http.StatusText(e.statusCode)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by WithMaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var body []byte

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, backoff.Permanent(err)
			}

			r, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}

			// 5xx counts against the breaker and is retryable.
			if r.StatusCode >= 500 {
				r.Body.Close()
				return nil, &serverError{statusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// BreakerState returns the current state of the circuit breaker.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
