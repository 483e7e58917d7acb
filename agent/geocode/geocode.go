// Package geocode resolves free-text place names to coordinates through a
// Nominatim-compatible HTTP endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
	retryx "github.com/pattadon/foodcourt-agent/pkg/retryx"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	BaseURL   string        `envconfig:"BASE_URL" split_words:"true" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"USER_AGENT" split_words:"true" default:"foodcourt-agent/1.0"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ contractx.Geocoder = (*Client)(nil)

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("geocoder base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid geocoder url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Resolve returns the best match for placeName. A place the service does
// not know is ErrNotFound, not a failure.
func (c *Client) Resolve(ctx context.Context, placeName string) (statex.Location, error) {
	query := strings.TrimSpace(placeName)
	if query == "" {
		return statex.Location{}, fmt.Errorf("%w: place name is required", contractx.ErrValidation)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return statex.Location{}, fmt.Errorf("build geocode request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return statex.Location{}, retryx.Transient(fmt.Errorf("execute geocode request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return statex.Location{}, retryx.Transient(fmt.Errorf("read geocode response: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("geocode http status=%d body=%s", resp.StatusCode, string(raw))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return statex.Location{}, retryx.Transient(err)
		}
		return statex.Location{}, err
	}

	var results []searchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return statex.Location{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return statex.Location{}, fmt.Errorf("%w: no match for %q", contractx.ErrNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return statex.Location{}, fmt.Errorf("parse geocode latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return statex.Location{}, fmt.Errorf("parse geocode longitude: %w", err)
	}

	name := results[0].DisplayName
	if name == "" {
		name = query
	}

	return statex.Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      name,
	}, nil
}
