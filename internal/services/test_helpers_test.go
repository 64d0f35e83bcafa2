package services_test

import (
	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AppEnv: "test"},
		Site:   config.SiteConfig{BaseURL: "https://novocode.com.br"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-that-is-at-least-32-characters",
			JWTIssuer:       "novocode-api",
			SessionTTLHours: 12,
			CookieDomain:    "novocode.com.br",
			CookieSecure:    true,
		},
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
