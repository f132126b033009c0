package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Nager.Date API
const DefaultBaseURL = "https://date.nager.at"

// ErrFetch is matched by every FetchError
var ErrFetch = errors.New("holiday fetch failed")

// FetchError reports a failed holiday retrieval
type FetchError struct {
	Country string
	Year    int

	// Status is the HTTP status code, zero when no response was received
	Status int

	Cause error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch holidays %s/%d", e.Country, e.Year)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *FetchError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrFetch) true for any FetchError
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Observer is notified of each fetch outcome
type Observer func(country string, status string, elapsed time.Duration)

// Client retrieves public holidays from a Nager.Date compatible API
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	observer Observer
}

// ClientConfig holds configuration for the holiday client
type ClientConfig struct {
	// BaseURL is the API root (default: DefaultBaseURL)
	BaseURL string

	// Timeout bounds the single request (default: 15s)
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client

	Logger *slog.Logger

	// Observer receives "success" or "error" per fetch
	Observer Observer
}

// NewClient creates a new holiday client
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  baseURL,
		http:     httpClient,
		logger:   logger,
		observer: cfg.Observer,
	}
}

// URL returns the endpoint for a country and year
func (c *Client) URL(country string, year int) string {
	return fmt.Sprintf("%s/api/v3/publicholidays/%d/%s", c.baseURL, year, country)
}

// Fetch performs exactly one request and returns the holidays for country/year.
// There is no retry and no caching.
func (c *Client) Fetch(ctx context.Context, country string, year int) (*Set, error) {
	start := time.Now()
	country = strings.ToUpper(strings.TrimSpace(country))

	set, err := c.fetch(ctx, country, year)

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.observer != nil {
		c.observer(country, status, time.Since(start))
	}

	if err != nil {
		c.logger.Error("holiday fetch failed", "country", country, "year", year, "err", err)
		return nil, err
	}

	c.logger.Info("holidays fetched", "country", country, "year", year, "count", set.Len())
	return set, nil
}

func (c *Client) fetch(ctx context.Context, country string, year int) (*Set, error) {
	fail := func(status int, cause error) error {
		return &FetchError{Country: country, Year: year, Status: status, Cause: cause}
	}

	if !validCountry(country) {
		return nil, fail(0, fmt.Errorf("invalid country code %q", country))
	}
	if year <= 0 {
		return nil, fail(0, fmt.Errorf("invalid year %d", year))
	}

	url := c.URL(country, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting holidays", "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body so the message can carry the API's reason
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("failed to parse response: %w", err))
	}

	return NewSet(country, year, records), nil
}

func validCountry(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
