// Package geo implements ports.CityProvider against the GeoDB Cities API.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"peoplenet/application/ports"
	pkgerrors "peoplenet/pkg/errors"
)

const defaultLimit = 10

// Config holds the provider settings
type Config struct {
	BaseURL string
	APIKey  string
	APIHost string
	Timeout time.Duration
	Limit   int
	Traced  bool // wrap the HTTP client with X-Ray
}

// GeoDBProvider searches cities by name prefix
type GeoDBProvider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewGeoDBProvider creates a provider with its own HTTP client
func NewGeoDBProvider(cfg Config, logger *zap.Logger) *GeoDBProvider {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Traced {
		client = xray.Client(client)
	}
	return &GeoDBProvider{cfg: cfg, client: client, logger: logger}
}

type geoDBCity struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Population  int     `json:"population"`
	Timezone    string  `json:"timezone"`
}

type geoDBResponse struct {
	Data   []geoDBCity `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Search implements ports.CityProvider
func (p *GeoDBProvider) Search(ctx context.Context, query string) ([]ports.CityResult, error) {
	endpoint, err := url.Parse(p.cfg.BaseURL)
	if err != nil {
		return nil, pkgerrors.NewInternalError("invalid city API URL").WithCause(err)
	}
	params := endpoint.Query()
	params.Set("namePrefix", query)
	params.Set("limit", strconv.Itoa(p.cfg.Limit))
	params.Set("sort", "-population")
	params.Set("types", "CITY")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", p.cfg.APIKey)
	}
	if p.cfg.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", p.cfg.APIHost)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("city API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read city API response: %w", err)
	}

	p.logger.Debug("City API call",
		zap.String("query", query),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := time.Second
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		appErr := pkgerrors.NewRateLimitError(0, 0, retryAfter).WithCode("CITY_PROVIDER_RATE_LIMITED")
		appErr.Message = "city provider quota exhausted"
		return nil, appErr
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("city API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded geoDBResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode city API response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("city API error %s: %s", decoded.Errors[0].Code, decoded.Errors[0].Message)
	}

	results := make([]ports.CityResult, 0, len(decoded.Data))
	for _, c := range decoded.Data {
		name := c.City
		if name == "" {
			name = c.Name
		}
		results = append(results, ports.CityResult{
			ID:          strconv.Itoa(c.ID),
			Name:        name,
			Region:      c.Region,
			Country:     c.Country,
			CountryCode: c.CountryCode,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Timezone:    c.Timezone,
			Population:  c.Population,
		})
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
