package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"weather-analyzer/internal/models"
)

// DefaultBaseURL is the Open-Meteo historical archive endpoint.
const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// hourlyTimeLayout matches Open-Meteo's ISO8601 hourly timestamps.
const hourlyTimeLayout = "2006-01-02T15:04"

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Config controls the archive client's range and resilience settings.
type Config struct {
	BaseURL       string
	StartDate     string // YYYY-MM-DD
	EndDate       string // YYYY-MM-DD
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration // fixed backoff between attempts
}

// Client fetches historical hourly observations from the Open-Meteo
// archive API, retrying recoverable failures with a fixed backoff
// behind a circuit breaker.
type Client struct {
	cfg     Config
	httpc   *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates an archive client. Zero-value config fields get
// working defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 3 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-archive",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		circuit: cb,
	}
}

// archiveResponse mirrors the hourly block of the archive API payload.
// Measurement arrays carry JSON nulls for gaps, decoded as nil.
type archiveResponse struct {
	Hourly struct {
		Time        []string   `json:"time"`
		Temperature []*float64 `json:"temperature_2m"`
		Humidity    []*float64 `json:"relative_humidity_2m"`
		Pressure    []*float64 `json:"pressure_msl"`
	} `json:"hourly"`
}

// FetchCity retrieves the hourly temperature, humidity and pressure
// series for one city. Series of unequal length are trimmed to the
// shortest; unparsable timestamps drop the row.
func (c *Client) FetchCity(ctx context.Context, loc models.CityLocation) ([]models.Observation, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	values.Set("start_date", c.cfg.StartDate)
	values.Set("end_date", c.cfg.EndDate)
	values.Set("hourly", "temperature_2m,relative_humidity_2m,pressure_msl")
	values.Set("timezone", "UTC")

	reqURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, values.Encode())

	resp, err := c.doWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", loc.City, err)
	}
	defer resp.Body.Close()

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response for %s: %w", loc.City, err)
	}

	return hourlyToObservations(loc.City, payload), nil
}

// doWithRetry executes the request through the circuit breaker,
// retrying recoverable failures (network errors, 429, 5xx) with a
// fixed backoff up to MaxRetries extra attempts.
func (c *Client) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpc.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		// Other 4xx statuses are not recoverable; retrying cannot help.
		if errors.Is(err, errUnexpected) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.cfg.MaxRetries {
			return nil, lastErr
		}

		timer := time.NewTimer(c.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// hourlyToObservations aligns the hourly arrays into observations,
// trimming to the shortest series when lengths disagree.
func hourlyToObservations(city string, payload archiveResponse) []models.Observation {
	h := payload.Hourly

	n := len(h.Time)
	if len(h.Temperature) < n {
		n = len(h.Temperature)
	}
	if len(h.Humidity) < n {
		n = len(h.Humidity)
	}
	if len(h.Pressure) < n {
		n = len(h.Pressure)
	}

	observations := make([]models.Observation, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.Parse(hourlyTimeLayout, h.Time[i])
		if err != nil {
			continue
		}

		observations = append(observations, models.Observation{
			City:        city,
			Timestamp:   ts.UTC(),
			Temperature: h.Temperature[i],
			Humidity:    h.Humidity[i],
			Pressure:    h.Pressure[i],
		})
	}

	return observations
}
