package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Fallback      FallbackConfig
	SMTP          SMTPConfig
	Site          SiteConfig
	Auth          AuthConfig
	ReCAPTCHA     ReCAPTCHAConfig
	EventTriggers EventTriggersConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

// DatabaseConfig configures the primary (pgx) store and its health gate.
type DatabaseConfig struct {
	URL                   string
	CACertPath            string
	MaxConns              int32
	MinConns              int32
	HealthCheckInterval   time.Duration
	ProbeTimeout          time.Duration
	ConnectAttempts       int
	ConnectTimeout        time.Duration
	OperationTimeout      time.Duration
	ConnectRetryDelay     time.Duration
	MigrationsPath        string
	SkipStartupConnection bool
}

// FallbackConfig configures the REST access path to the same database.
type FallbackConfig struct {
	RESTURL string
	APIKey  string
	Timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SiteConfig holds settings of the public Next.js site this API serves.
type SiteConfig struct {
	BaseURL          string
	RevalidateURL    string
	RevalidateSecret string
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	SessionTTLHours int
	CookieDomain    string
	CookieSecure    bool
}

type ReCAPTCHAConfig struct {
	SecretKey string
	Disabled  bool
}

type EventTriggersConfig struct {
	LeadCreatedTriggerURL          string
	TestimonialSubmittedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	SiteConfigTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://novocode.com.br,https://www.novocode.com.br")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_HEALTH_CHECK_INTERVAL_SECONDS", 30)
	v.SetDefault("DB_PROBE_TIMEOUT_SECONDS", 3)
	v.SetDefault("DB_CONNECT_ATTEMPTS", 3)
	v.SetDefault("DB_CONNECT_TIMEOUT_SECONDS", 3)
	v.SetDefault("DB_OPERATION_TIMEOUT_SECONDS", 5)
	v.SetDefault("DB_CONNECT_RETRY_DELAY_MS", 250)
	v.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("FALLBACK_TIMEOUT_SECONDS", 10)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "NOVOCODE <contato@novocode.com.br>")
	v.SetDefault("SITE_BASE_URL", "https://novocode.com.br")
	v.SetDefault("JWT_ISSUER", "novocode-api")
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("RECAPTCHA_DISABLED", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "novocode-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "novocode")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "novocode-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("SITE_CONFIG_CACHE_TTL_SECONDS", 300)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:                   v.GetString("DATABASE_URL"),
			CACertPath:            v.GetString("DATABASE_CA_CERT"),
			MaxConns:              v.GetInt32("DB_MAX_CONNS"),
			MinConns:              v.GetInt32("DB_MIN_CONNS"),
			HealthCheckInterval:   time.Duration(v.GetInt("DB_HEALTH_CHECK_INTERVAL_SECONDS")) * time.Second,
			ProbeTimeout:          time.Duration(v.GetInt("DB_PROBE_TIMEOUT_SECONDS")) * time.Second,
			ConnectAttempts:       v.GetInt("DB_CONNECT_ATTEMPTS"),
			ConnectTimeout:        time.Duration(v.GetInt("DB_CONNECT_TIMEOUT_SECONDS")) * time.Second,
			OperationTimeout:      time.Duration(v.GetInt("DB_OPERATION_TIMEOUT_SECONDS")) * time.Second,
			ConnectRetryDelay:     time.Duration(v.GetInt("DB_CONNECT_RETRY_DELAY_MS")) * time.Millisecond,
			MigrationsPath:        v.GetString("DB_MIGRATIONS_PATH"),
			SkipStartupConnection: v.GetBool("DB_SKIP_STARTUP_CONNECTION"),
		},
		Fallback: FallbackConfig{
			RESTURL: strings.TrimRight(v.GetString("FALLBACK_REST_URL"), "/"),
			APIKey:  v.GetString("FALLBACK_REST_API_KEY"),
			Timeout: time.Duration(v.GetInt("FALLBACK_TIMEOUT_SECONDS")) * time.Second,
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Site: SiteConfig{
			BaseURL:          strings.TrimRight(v.GetString("SITE_BASE_URL"), "/"),
			RevalidateURL:    v.GetString("SITE_REVALIDATE_URL"),
			RevalidateSecret: v.GetString("SITE_REVALIDATE_SECRET"),
		},
		Auth: AuthConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
			Disabled:  v.GetBool("RECAPTCHA_DISABLED"),
		},
		EventTriggers: EventTriggersConfig{
			LeadCreatedTriggerURL:          v.GetString("LEAD_CREATED_TRIGGER_URL"),
			TestimonialSubmittedTriggerURL: v.GetString("TESTIMONIAL_SUBMITTED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			SiteConfigTTL: time.Duration(v.GetInt("SITE_CONFIG_CACHE_TTL_SECONDS")) * time.Second,
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	// At least one access path to the database must be configured
	if c.Database.URL == "" && c.Fallback.RESTURL == "" {
		return fmt.Errorf("DATABASE_URL or FALLBACK_REST_URL is required")
	}
	if c.Fallback.RESTURL != "" && c.Fallback.APIKey == "" {
		return fmt.Errorf("FALLBACK_REST_API_KEY is required when FALLBACK_REST_URL is set")
	}
	if c.Database.HealthCheckInterval <= 0 {
		return fmt.Errorf("DB_HEALTH_CHECK_INTERVAL_SECONDS must be positive")
	}
	if c.Database.ProbeTimeout <= 0 {
		return fmt.Errorf("DB_PROBE_TIMEOUT_SECONDS must be positive")
	}
	if c.Database.ConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT_SECONDS must be positive")
	}
	if c.Database.OperationTimeout <= 0 {
		return fmt.Errorf("DB_OPERATION_TIMEOUT_SECONDS must be positive")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	if !c.ReCAPTCHA.Disabled && c.ReCAPTCHA.SecretKey == "" {
		return fmt.Errorf("RECAPTCHA_SECRET_KEY is required")
	}

	if c.Site.BaseURL == "" {
		return fmt.Errorf("SITE_BASE_URL is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// SMTPEnabled reports whether outgoing email is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != ""
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
