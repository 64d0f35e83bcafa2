package repository

import (
	"context"
	"sync"
	"time"

	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultHealthCheckInterval is how long a probe result is trusted.
const DefaultHealthCheckInterval = 30 * time.Second

// Probe performs one round trip against the primary store.
type Probe func(ctx context.Context) error

// HealthGate caches whether the primary store is reachable. The probe runs at
// most once per interval; between probes the cached flag is served as is, and
// failures of individual calls never change it.
type HealthGate struct {
	mu          sync.Mutex
	healthy     bool
	lastChecked time.Time
	interval    time.Duration
	probe       Probe
	now         func() time.Time
}

// HealthGateOption customizes a HealthGate.
type HealthGateOption func(*HealthGate)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) HealthGateOption {
	return func(g *HealthGate) {
		g.now = now
	}
}

// NewHealthGate creates a gate that starts out optimistic: until the first
// probe completes the primary is assumed healthy.
func NewHealthGate(probe Probe, interval time.Duration, opts ...HealthGateOption) *HealthGate {
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}

	g := &HealthGate{
		healthy:  true,
		interval: interval,
		probe:    probe,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Healthy returns the cached health flag, probing first if the cached value
// is older than the interval.
func (g *HealthGate) Healthy(ctx context.Context) bool {
	g.mu.Lock()
	now := g.now()
	if !g.lastChecked.IsZero() && now.Sub(g.lastChecked) < g.interval {
		healthy := g.healthy
		g.mu.Unlock()
		return healthy
	}
	// Claim this probe window so concurrent callers keep using the old value.
	g.lastChecked = now
	g.mu.Unlock()

	// A caller that gives up must not leave the gate marked unhealthy.
	err := g.probe(context.WithoutCancel(ctx))
	healthy := err == nil

	g.mu.Lock()
	previous := g.healthy
	g.healthy = healthy
	g.mu.Unlock()

	if healthy {
		metrics.HealthProbeTotal.WithLabelValues("healthy").Inc()
		metrics.PrimaryHealthy.Set(1)
	} else {
		metrics.HealthProbeTotal.WithLabelValues("unhealthy").Inc()
		metrics.PrimaryHealthy.Set(0)
	}

	switch {
	case previous && !healthy:
		logger.Warn("Primary store marked unhealthy", zap.Error(err))
	case !previous && healthy:
		logger.Info("Primary store recovered")
	}

	return healthy
}

// Snapshot returns the cached flag and when it was last probed without
// triggering a probe.
func (g *HealthGate) Snapshot() (healthy bool, lastChecked time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.healthy, g.lastChecked
}
