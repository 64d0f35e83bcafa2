package repository

import (
	"context"

	"github.com/novocode/novocode-api/internal/models"
)

type SiteConfigRepository struct {
	gate     *HealthGate
	primary  SiteConfigDataSource
	fallback SiteConfigDataSource
}

func NewSiteConfigRepository(gate *HealthGate, primary, fallback SiteConfigDataSource) *SiteConfigRepository {
	return &SiteConfigRepository{gate: gate, primary: primary, fallback: fallback}
}

// Get returns the stored configuration, or the built-in default when it is
// missing or unreachable. fromStore is false whenever the default was served.
func (r *SiteConfigRepository) Get(ctx context.Context) (config *models.SiteConfig, fromStore bool) {
	def := models.DefaultSiteConfig()

	config, path := ReadServed(ctx, r.gate, "siteConfig.get",
		func(ctx context.Context) (*models.SiteConfig, error) { return r.primary.GetSiteConfig(ctx) },
		func(ctx context.Context) (*models.SiteConfig, error) { return r.fallback.GetSiteConfig(ctx) },
		def)

	if config == nil {
		// Reachable but never seeded.
		return def, false
	}
	return config, path != PathDefault
}
