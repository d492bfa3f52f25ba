package geocode

import (
	"context"
	"sync"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

// Cached remembers successful lookups. When full, the oldest entry is evicted.
type Cached struct {
	inner      Geocoder
	maxEntries int
	metrics    *observability.Metrics

	mu      sync.Mutex
	entries map[string]Coordinates
	order   []string
}

// NewCached wraps inner with a cache of at most maxEntries locations.
func NewCached(inner Geocoder, maxEntries int, metrics *observability.Metrics) *Cached {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cached{
		inner:      inner,
		maxEntries: maxEntries,
		metrics:    metrics,
		entries:    make(map[string]Coordinates),
	}
}

func (c *Cached) Geocode(ctx context.Context, loc weather.Location) (Coordinates, error) {
	key := loc.Key() + ":" + loc.CountryOrDefault()

	c.mu.Lock()
	coords, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coords, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	coords, err := c.inner.Geocode(ctx, loc)
	if err != nil {
		return coords, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = coords
		c.order = append(c.order, key)
		if len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	return coords, nil
}
