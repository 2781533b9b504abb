package terrain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ridgecast/forecast-sms/internal/observability"
)

// Client implements domain.TerrainSource against an Open-Elevation style
// lookup API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an elevation lookup client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ElevationM returns the terrain elevation in meters for one coordinate.
func (c *Client) ElevationM(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{
		"locations": {fmt.Sprintf("%.5f,%.5f", lat, lon)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.TerrainAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.TerrainRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.TerrainRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("elevation API error: status %d: %s", resp.StatusCode, body)
	}

	var lookupResp response
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		c.metrics.TerrainRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if len(lookupResp.Results) == 0 {
		c.metrics.TerrainRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("elevation API returned no results for %.5f,%.5f", lat, lon)
	}

	c.metrics.TerrainRequests.WithLabelValues("success").Inc()
	return lookupResp.Results[0].Elevation, nil
}

// Open-Elevation API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}
