package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/internal/cache"
	"github.com/novocode/novocode-api/internal/database/postgres"
	"github.com/novocode/novocode-api/internal/database/rest"
	"github.com/novocode/novocode-api/internal/handlers"
	"github.com/novocode/novocode-api/internal/middleware"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/repository"
	"github.com/novocode/novocode-api/internal/services"
	"github.com/novocode/novocode-api/pkg/db"
	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/mailer"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/novocode/novocode-api/pkg/profiling"
	"github.com/novocode/novocode-api/pkg/recaptcha"
	"github.com/novocode/novocode-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Both access paths must serve every store operation.
var (
	_ repository.DataSource = (*postgres.Client)(nil)
	_ repository.DataSource = (*rest.Client)(nil)
)

type routeHandlers struct {
	health            *handlers.HealthHandler
	siteConfig        *handlers.SiteConfigHandler
	testimonials      *handlers.TestimonialHandler
	leads             *handlers.LeadHandler
	logs              *handlers.LogsHandler
	adminAuth         *handlers.AdminAuthHandler
	adminTestimonials *handlers.AdminTestimonialsHandler
	adminLeads        *handlers.AdminLeadsHandler
	adminAuthService  services.AdminAuthServiceInterface
}

type rateLimiters struct {
	general *middleware.RateLimiter
	forms   *middleware.RateLimiter
	login   *middleware.RateLimiter
}

// registerPublicRoutes registers the endpoints the public site calls
func registerPublicRoutes(v1 *gin.RouterGroup, h routeHandlers, limits rateLimiters) {
	v1.GET("/site-config", limits.general.Middleware(), h.siteConfig.Get)

	v1.GET("/testimonials", limits.general.Middleware(), h.testimonials.ListPublished)
	v1.GET("/testimonials/request/:token", limits.general.Middleware(), h.testimonials.Resolve)
	v1.POST("/testimonials/submit", limits.forms.Middleware(), middleware.BodySizeLimitMiddleware(16*1024), h.testimonials.Submit)

	v1.POST("/leads", limits.forms.Middleware(), middleware.BodySizeLimitMiddleware(32*1024), h.leads.CreateLead)
	v1.POST("/logs", limits.general.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), h.logs.ReceiveSiteLogs)
}

// registerAdminRoutes registers back-office authentication and moderation routes
func registerAdminRoutes(router *gin.Engine, cfg *config.Config, h routeHandlers, limits rateLimiters) {
	sessionMiddleware := middleware.AdminSessionMiddleware(
		h.adminAuthService.GetTokenManager(),
		cfg.Auth.CookieDomain,
		cfg.Auth.CookieSecure,
	)

	auth := router.Group("/api/v1/auth/admin")
	auth.POST("/login", limits.login.Middleware(), middleware.BodySizeLimitMiddleware(4*1024), h.adminAuth.Login)
	auth.POST("/logout", h.adminAuth.Logout)
	auth.GET("/session", sessionMiddleware, h.adminAuth.GetSession)

	admin := router.Group("/api/v1/admin")
	admin.Use(sessionMiddleware)

	admin.GET("/testimonials", h.adminTestimonials.List)
	admin.POST("/testimonials/:id/moderate", middleware.RequireRole(models.UserRoleAdmin), h.adminTestimonials.Moderate)
	admin.DELETE("/testimonials/:id", middleware.RequireRole(models.UserRoleAdmin), h.adminTestimonials.Delete)

	admin.GET("/leads", h.adminLeads.List)
	admin.POST("/leads/:id/testimonial-request", h.adminLeads.RequestTestimonial)
}

// siteLogWriter returns the sink for log batches sent by the public site.
func siteLogWriter(cfg *config.Config) io.Writer {
	if !cfg.IsProduction() || cfg.Logging.Dir == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logging.Dir, "site.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting NOVOCODE API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling is optional
	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Error("Failed to start profiler, continuing without it", zap.Error(err))
	} else {
		defer stopProfiler()
	}

	metrics.RecordInfrastructureMetrics()

	// Primary store. The pool connects lazily so a database that is down at
	// startup leaves the fallback path serving.
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = db.NewPool(context.Background(), db.PoolConfig{
			URL:        cfg.Database.URL,
			CACertPath: cfg.Database.CACertPath,
			MaxConns:   cfg.Database.MaxConns,
			MinConns:   cfg.Database.MinConns,

			ConnectTimeout: cfg.Database.ConnectTimeout,
		})
		if err != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_URL not set, serving from the REST fallback only")
	}

	primary := postgres.NewClient(pool, postgres.Config{
		ConnectAttempts:   cfg.Database.ConnectAttempts,
		ConnectRetryDelay: cfg.Database.ConnectRetryDelay,
		ConnectTimeout:    cfg.Database.ConnectTimeout,
		OperationTimeout:  cfg.Database.OperationTimeout,
		ProbeTimeout:      cfg.Database.ProbeTimeout,
	})
	defer primary.Close()

	httpClient := httpclient.NewStandardClient()
	fallback := rest.NewClient(rest.Config{
		BaseURL: cfg.Fallback.RESTURL,
		APIKey:  cfg.Fallback.APIKey,
		Timeout: cfg.Fallback.Timeout,
	}, httpclient.NewClientWithTimeout(cfg.Fallback.Timeout))

	gate := repository.NewHealthGate(primary.Probe, cfg.Database.HealthCheckInterval)
	if !cfg.Database.SkipStartupConnection {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ProbeTimeout)
		if !gate.Healthy(ctx) {
			logger.Warn("Primary store unreachable at startup, using the REST fallback")
		}
		cancel()
	}

	// Repositories
	testimonialRepo := repository.NewTestimonialRepository(gate, primary, fallback)
	leadRepo := repository.NewLeadRepository(gate, primary, fallback)
	siteConfigRepo := repository.NewSiteConfigRepository(gate, primary, fallback)
	userRepo := repository.NewUserRepository(gate, primary, fallback)

	siteConfigCache := cache.NewSiteConfigCache(siteConfigRepo, cfg.Cache.SiteConfigTTL)
	siteConfigCache.Warm(context.Background())

	// External integrations
	emailSender := mailer.NewSender(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	var captcha services.CaptchaVerifier = recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpClient)
	if cfg.ReCAPTCHA.Disabled {
		logger.Warn("reCAPTCHA verification is DISABLED")
		captcha = recaptcha.NoopVerifier{}
	}

	// Initialize services
	testimonialService := services.NewTestimonialService(testimonialRepo, leadRepo, emailSender, cfg, httpClient)
	leadService := services.NewLeadService(leadRepo, captcha, cfg, httpClient)
	siteConfigService := services.NewSiteConfigService(siteConfigCache)
	adminAuthService := services.NewAdminAuthService(userRepo, cfg)

	// Initialize handlers
	h := routeHandlers{
		health:            handlers.NewHealthHandler(gate, fallback.BreakerState),
		siteConfig:        handlers.NewSiteConfigHandler(siteConfigService),
		testimonials:      handlers.NewTestimonialHandler(testimonialService),
		leads:             handlers.NewLeadHandler(leadService),
		logs:              handlers.NewLogsHandler(siteLogWriter(cfg)),
		adminAuth:         handlers.NewAdminAuthHandler(adminAuthService),
		adminTestimonials: handlers.NewAdminTestimonialsHandler(testimonialService),
		adminLeads:        handlers.NewAdminLeadsHandler(leadService, testimonialService),
		adminAuthService:  adminAuthService,
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	// CORS configuration - only the public site and back office may call the API
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true, // Required for admin session cookies
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters are keyed by client IP and pruned until shutdown
	limiterCtx, stopLimiters := context.WithCancel(context.Background())
	defer stopLimiters()
	limits := rateLimiters{
		general: middleware.NewRateLimiter(limiterCtx, "general", 50, 100),
		forms:   middleware.NewRateLimiter(limiterCtx, "forms", rate.Every(12*time.Second), 5), // 5/min per IP
		login:   middleware.NewRateLimiter(limiterCtx, "login", rate.Every(30*time.Second), 5), // 2/min per IP
	}

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", h.health.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	registerPublicRoutes(v1, h, limits)
	registerAdminRoutes(router, cfg, h, limits)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
