package cache

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	siteConfigCacheKey  = "site_config"
	siteConfigCacheName = "site_config"

	DefaultSiteConfigTTL = 5 * time.Minute
)

// SiteConfigLoader loads the site configuration. fromStore is false when the
// built-in default was served.
type SiteConfigLoader interface {
	Get(ctx context.Context) (config *models.SiteConfig, fromStore bool)
}

// SiteConfigCache keeps the singleton site configuration in memory.
// Defaults are never cached so a recovered store is picked up on the next call.
type SiteConfigCache struct {
	cache  *gocache.Cache
	loader SiteConfigLoader
	ttl    time.Duration
}

// NewSiteConfigCache creates a new site config cache
func NewSiteConfigCache(loader SiteConfigLoader, ttl time.Duration) *SiteConfigCache {
	if ttl <= 0 {
		ttl = DefaultSiteConfigTTL
	}
	return &SiteConfigCache{
		cache:  gocache.New(ttl, 2*ttl),
		loader: loader,
		ttl:    ttl,
	}
}

// Warm populates the cache at startup. A default result leaves it empty.
func (c *SiteConfigCache) Warm(ctx context.Context) {
	logger.Info("Warming site config cache...")
	if _, fromStore := c.refresh(ctx); !fromStore {
		logger.Warn("Site config cache not warmed, serving defaults until the store answers")
		return
	}
	logger.Info("Site config cache warmed")
}

// Get returns the cached configuration or loads it on a miss.
func (c *SiteConfigCache) Get(ctx context.Context) *models.SiteConfig {
	if data, found := c.cache.Get(siteConfigCacheKey); found {
		if config, ok := data.(*models.SiteConfig); ok {
			metrics.CacheHits.WithLabelValues(siteConfigCacheName).Inc()
			return config
		}
		logger.Error("Invalid site config cache data type")
		c.cache.Delete(siteConfigCacheKey)
	}

	metrics.CacheMisses.WithLabelValues(siteConfigCacheName).Inc()
	config, _ := c.refresh(ctx)
	return config
}

func (c *SiteConfigCache) refresh(ctx context.Context) (*models.SiteConfig, bool) {
	config, fromStore := c.loader.Get(ctx)
	if fromStore {
		c.cache.Set(siteConfigCacheKey, config, c.ttl)
		logger.Debug("Site config cache refreshed", zap.Duration("ttl", c.ttl))
	}
	return config, fromStore
}
