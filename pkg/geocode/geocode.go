// Package geocode resolves free-text addresses to coordinates using the
// Nominatim search API. Lookups are paced to one request per interval as the
// service's usage policy asks.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// ErrNoMatch is returned when the service finds no candidate for a query.
// Callers treat it as recoverable: the address is simply saved without
// coordinates.
var ErrNoMatch = errors.New("no geocoding match")

// Result is the best match for a query.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// searchResponse is shaped for the API response; coordinates arrive as
// decimal strings.
type searchResponse []struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

// Client looks up addresses against Nominatim. The zero value is not usable;
// construct with New.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	countryCodes string
	limiter      *rate.Limiter
}

// New returns a client restricted to the given country scope (ISO codes,
// comma-separated; empty disables the restriction) that waits at least
// interval between consecutive lookups.
func New(countryCodes string, interval time.Duration) *Client {
	return &Client{
		// An unbounded lookup would stall a whole save batch, so cap the
		// round-trip regardless of what the caller's context allows.
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      defaultBaseURL,
		userAgent:    "eventmap-geocoder/1.0",
		countryCodes: countryCodes,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Geocode returns the best match for query, waiting on the pacing limiter
// first. Returns ErrNoMatch when the service has no candidate.
func (c *Client) Geocode(ctx context.Context, query string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("accept-language", "en")
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	u := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var results searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", first.Lon, err)
	}

	return &Result{Lat: lat, Lon: lon, DisplayName: first.DisplayName}, nil
}
