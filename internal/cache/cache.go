// Package cache provides in-memory caching for rendered grids and
// column-query results.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	GridCacheSizeMB int
	GridTTL         time.Duration
	QueryCacheSize  int
}

// Manager manages the grid and query caches.
type Manager struct {
	gridCache  *bigcache.BigCache
	queryCache *lru.Cache[string, []byte]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	gridCacheConfig := bigcache.Config{
		Shards:             1024,
		LifeWindow:         cfg.GridTTL,
		CleanWindow:        cfg.GridTTL / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512 * 1024, // rendered grids run larger than raster tiles
		HardMaxCacheSize:   cfg.GridCacheSizeMB,
		Verbose:            false,
	}

	gridCache, err := bigcache.New(context.Background(), gridCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create grid cache: %w", err)
	}

	queryCache, err := lru.New[string, []byte](cfg.QueryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Manager{
		gridCache:  gridCache,
		queryCache: queryCache,
	}, nil
}

// GetGrid retrieves a rendered grid from cache.
func (m *Manager) GetGrid(key string) ([]byte, bool) {
	data, err := m.gridCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetGrid stores a rendered grid in cache.
func (m *Manager) SetGrid(key string, data []byte) error {
	return m.gridCache.Set(key, data)
}

// GetQuery retrieves a column-query result from cache.
func (m *Manager) GetQuery(key string) ([]byte, bool) {
	return m.queryCache.Get(key)
}

// SetQuery stores a column-query result in cache.
func (m *Manager) SetQuery(key string, data []byte) {
	m.queryCache.Add(key, data)
}

// GridKey generates a cache key for one rendered grid.
func GridKey(dataset, neuronType, region, side, metric, format string) string {
	return fmt.Sprintf("grid:%s:%s:%s_%s:%s.%s", dataset, neuronType, region, side, metric, format)
}

// QueryKey generates a cache key for the raw column rows of a neuron type.
func QueryKey(dataset, neuronType string) string {
	return fmt.Sprintf("rows:%s:%s", dataset, neuronType)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"grid_cache_len":  m.gridCache.Len(),
		"grid_cache_cap":  m.gridCache.Capacity(),
		"query_cache_len": m.queryCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.gridCache.Close()
}
