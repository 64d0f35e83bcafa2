package services

import (
	"context"

	"github.com/novocode/novocode-api/internal/models"
)

// SiteConfigService serves the public site configuration.
type SiteConfigService struct {
	source SiteConfigSource
}

func NewSiteConfigService(source SiteConfigSource) *SiteConfigService {
	return &SiteConfigService{source: source}
}

// Get never fails; the built-in default stands in for an unreachable store.
func (s *SiteConfigService) Get(ctx context.Context) *models.SiteConfig {
	return s.source.Get(ctx)
}
