package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/novocode/novocode-api/pkg/circuitbreaker"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	clientName = "rest"

	// maxErrorBody bounds how much of an error response is read for logging.
	maxErrorBody = 4 << 10
)

// ErrNotConfigured is returned by every call on a client without a base URL.
var ErrNotConfigured = fmt.Errorf("fallback store not configured: %w", apperrors.ErrUnavailable)

// Client is the fallback store: a PostgREST-compatible HTTP API in front of
// the same database the primary client talks to.
type Client struct {
	baseURL        string
	apiKey         string
	timeout        time.Duration
	httpClient     httpclient.Client
	circuitBreaker *gobreaker.CircuitBreaker
	now            func() time.Time
}

// Config holds the fallback endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a REST client. An empty BaseURL yields a client whose
// every call fails with ErrNotConfigured.
func NewClient(cfg Config, httpClient httpclient.Client) *Client {
	cbConfig := circuitbreaker.DefaultConfig("rest_fallback")
	// Answers such as "not found" or "conflict" prove the fallback is up.
	cbConfig.IsSuccessful = func(err error) bool {
		return err == nil || apperrors.IsDefinitive(err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	if cfg.BaseURL != "" {
		logger.Info("REST fallback client initialized", zap.String("base_url", cfg.BaseURL))
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		timeout:        cfg.Timeout,
		httpClient:     httpClient,
		circuitBreaker: circuitbreaker.NewCircuitBreaker(cbConfig),
		now:            time.Now,
	}
}

// BreakerState reports the circuit breaker state for health reporting.
func (c *Client) BreakerState() string {
	return circuitbreaker.GetState(c.circuitBreaker)
}

// request describes one PostgREST call against a table.
type request struct {
	operation string
	method    string
	table     string
	query     url.Values
	body      interface{}
}

// errorBody is the PostgREST error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// execute performs req through the circuit breaker and decodes the JSON
// array response into rows.
func execute[T any](ctx context.Context, c *Client, req request) ([]T, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	start := time.Now()

	rows, err := circuitbreaker.Execute(c.circuitBreaker, func() ([]T, error) {
		body, err := c.roundTrip(ctx, req)
		if err != nil {
			return nil, err
		}

		var rows []T
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", req.table, err)
		}
		return rows, nil
	})

	duration := metrics.MeasureDuration(start)
	switch {
	case err == nil:
		recordMetrics(req.operation, "success", duration)
		logger.LogAPICall(clientName, req.operation, "success", duration, zap.Int("rows", len(rows)))
	case apperrors.IsDefinitive(err):
		recordMetrics(req.operation, "rejected", duration)
		logger.LogAPICall(clientName, req.operation, "rejected", duration, zap.Error(err))
	default:
		recordMetrics(req.operation, "error", duration)
		logger.LogAPICall(clientName, req.operation, "error", duration, zap.Error(err))
	}

	return rows, err
}

func (c *Client) roundTrip(ctx context.Context, req request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, req.table)
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", req.table, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.method != http.MethodGet {
		httpReq.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", req.method, req.table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s response: %w", req.table, err)
		}
		return respBody, nil
	}

	errBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best effort for diagnostics
	return nil, mapStatusError(req.table, resp.StatusCode, errBytes)
}

// mapStatusError translates PostgREST failures into application errors.
// Only constraint violations are definitive; everything else counts as the
// fallback path failing.
func mapStatusError(table string, status int, raw []byte) error {
	var pgErr errorBody
	_ = json.Unmarshal(raw, &pgErr) //nolint:errcheck // body may not be JSON

	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%s: %s: %w", table, pgErr.Message, apperrors.ErrConflict)
	case "23514", "22P02":
		return apperrors.InvalidInputError(table, pgErr.Message)
	}

	if status == http.StatusConflict {
		return fmt.Errorf("%s: %w", table, apperrors.ErrConflict)
	}

	return fmt.Errorf("%s request failed with status %d: %s", table, status, pgErr.Message)
}

// recordMetrics records fallback client operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBRequestDuration.WithLabelValues(clientName, operation, status).Observe(duration)
	metrics.DBRequestTotal.WithLabelValues(clientName, operation, status).Inc()
}

// eq builds a PostgREST equality filter.
func eq(value string) string {
	return "eq." + value
}

func firstOrNil[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}
