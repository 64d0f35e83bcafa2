package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/novocode/novocode-api/pkg/retry"
	"go.uber.org/zap"
)

const (
	clientName = "postgres"

	uniqueViolation = "23505"
)

// ErrNotConfigured is returned by every call on a client without a pool.
var ErrNotConfigured = fmt.Errorf("primary store not configured: %w", apperrors.ErrUnavailable)

// Client is the primary store: a pgx connection pool with observability and
// a narrow connection-level retry.
type Client struct {
	pool             *pgxpool.Pool
	connectRetry     retry.Config
	connectTimeout   time.Duration
	operationTimeout time.Duration
	probeTimeout     time.Duration
}

// Config holds the client's resilience settings. The pool itself is built by
// pkg/db.
// ConnectTimeout bounds each acquire attempt and OperationTimeout bounds the
// work done on an acquired connection.
type Config struct {
	ConnectAttempts   int
	ConnectRetryDelay time.Duration
	ConnectTimeout    time.Duration
	OperationTimeout  time.Duration
	ProbeTimeout      time.Duration
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		ConnectAttempts:   3,
		ConnectRetryDelay: 250 * time.Millisecond,
		ConnectTimeout:    3 * time.Second,
		OperationTimeout:  5 * time.Second,
		ProbeTimeout:      3 * time.Second,
	}
}

// NewClient wraps pool. A nil pool yields a client whose every call fails with
// ErrNotConfigured, which keeps the fallback path usable on its own.
func NewClient(pool *pgxpool.Pool, cfg Config) *Client {
	defaults := DefaultConfig()
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaults.ProbeTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}

	return &Client{
		pool:             pool,
		connectRetry:     retry.ConnectionConfig(cfg.ConnectAttempts, cfg.ConnectRetryDelay, IsConnectionNotEstablished),
		connectTimeout:   cfg.ConnectTimeout,
		operationTimeout: cfg.OperationTimeout,
		probeTimeout:     cfg.ProbeTimeout,
	}
}

// Close closes the connection pool
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
		logger.Info("PostgreSQL connection pool closed")
	}
}

// Probe acquires a connection and runs a trivial round trip under the probe
// timeout. It is the health check behind the data access gate.
func (c *Client) Probe(ctx context.Context) error {
	if c.pool == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	var one int
	if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("probe query failed: %w", err)
	}

	if stat := c.Stats(); stat != nil {
		metrics.RecordPoolStats(stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns())
	}
	return nil
}

// Stats returns connection pool statistics
func (c *Client) Stats() *pgxpool.Stat {
	if c.pool == nil {
		return nil
	}
	return c.pool.Stat()
}

// IsConnectionNotEstablished reports whether err means no connection could be
// opened at all, as opposed to a failure of an established one.
func IsConnectionNotEstablished(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// acquire gets a pooled connection, retrying only while the connection cannot
// be established. Each attempt runs under the connect timeout.
func (c *Client) acquire(ctx context.Context, operation string) (*pgxpool.Conn, error) {
	if c.pool == nil {
		return nil, ErrNotConfigured
	}
	return retry.DoWithResult(ctx, c.connectRetry, clientName+"."+operation, func() (*pgxpool.Conn, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
		return c.pool.Acquire(attemptCtx)
	})
}

// withConn runs fn on an acquired connection and records metrics for it. fn
// receives a context bounded by the operation timeout.
// Definitive answers from the store (not found, conflict, invalid input) are
// counted as successful round trips.
func (c *Client) withConn(ctx context.Context, operation string, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	start := time.Now()

	conn, err := c.acquire(ctx, operation)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(clientName, operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	opCtx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	err = fn(opCtx, conn)
	cancel()
	duration := metrics.MeasureDuration(start)

	switch {
	case err == nil:
		recordMetrics(operation, "success", duration)
		logger.LogAPICall(clientName, operation, "success", duration)
	case apperrors.IsDefinitive(err):
		recordMetrics(operation, "rejected", duration)
		logger.LogAPICall(clientName, operation, "rejected", duration, zap.Error(err))
	default:
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(clientName, operation, "error", duration, zap.Error(err))
	}

	return err
}

// mapWriteError turns constraint violations into application errors.
func mapWriteError(err error, resource string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s already exists (%s): %w", resource, pgErr.ConstraintName, apperrors.ErrConflict)
	}
	return err
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBRequestDuration.WithLabelValues(clientName, operation, status).Observe(duration)
	metrics.DBRequestTotal.WithLabelValues(clientName, operation, status).Inc()
}
