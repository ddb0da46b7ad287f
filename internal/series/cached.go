package series

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/cache"
	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
)

// CachedLoader wraps a Loader with an in-memory LRU cache keyed by SeriesKey.
// Entries are revalidated against the file's modification time and size on
// every lookup, so a rewritten file is never served stale.
type CachedLoader struct {
	inner   *Loader
	cache   *cache.LRU[domain.SeriesKey, cachedSeries]
	metrics *observability.Metrics
}

type cachedSeries struct {
	modTime time.Time
	size    int64
	series  domain.Series
}

// NewCachedLoader creates a cache decorator around a loader.
func NewCachedLoader(inner *Loader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   cache.NewLRU[domain.SeriesKey, cachedSeries](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLoader) Load(ctx context.Context, key domain.SeriesKey) (domain.Series, error) {
	info, err := os.Stat(c.inner.Path(key))
	if err != nil {
		c.cache.Remove(key)
		if errors.Is(err, fs.ErrNotExist) {
			c.metrics.SeriesLoads.WithLabelValues("not_found").Inc()
			return domain.Series{}, fmt.Errorf("series %s: %w", key.FileName(), domain.ErrNotFound)
		}
		return domain.Series{}, fmt.Errorf("stat %s: %w", key.FileName(), err)
	}

	if hit, ok := c.cache.Get(key); ok {
		if hit.modTime.Equal(info.ModTime()) && hit.size == info.Size() {
			c.metrics.SeriesCache.WithLabelValues("hit").Inc()
			return hit.series, nil
		}
		c.metrics.SeriesCache.WithLabelValues("stale").Inc()
	} else {
		c.metrics.SeriesCache.WithLabelValues("miss").Inc()
	}

	s, err := c.inner.Load(ctx, key)
	if err != nil {
		c.cache.Remove(key)
		return s, err
	}
	c.cache.Put(key, cachedSeries{modTime: info.ModTime(), size: info.Size(), series: s})
	return s, nil
}
