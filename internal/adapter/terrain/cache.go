package terrain

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/observability"
)

// CachedSource wraps a TerrainSource with a bounded, expiring LRU cache.
// Keys quantize coordinates to four decimals, about 11 meters, so repeat
// queries for the same spot share an entry.
type CachedSource struct {
	inner   domain.TerrainSource
	cache   *expirable.LRU[string, float64]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a terrain source.
func NewCachedSource(inner domain.TerrainSource, size int, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   expirable.NewLRU[string, float64](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedSource) ElevationM(ctx context.Context, lat, lon float64) (float64, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if elev, ok := c.cache.Get(key); ok {
		c.metrics.TerrainCache.WithLabelValues("hit").Inc()
		return elev, nil
	}
	c.metrics.TerrainCache.WithLabelValues("miss").Inc()

	// Only successful lookups are cached so a transient API failure can be
	// retried on the next message.
	elev, err := c.inner.ElevationM(ctx, lat, lon)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, elev)
	return elev, nil
}
