package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PrimaryHealth reports the cached health of the primary store without probing.
type PrimaryHealth interface {
	Snapshot() (healthy bool, lastChecked time.Time)
}

type HealthHandler struct {
	primary       PrimaryHealth
	fallbackState func() string
}

// NewHealthHandler creates the healthcheck handler. fallbackState returns the
// REST fallback's circuit breaker state.
func NewHealthHandler(primary PrimaryHealth, fallbackState func() string) *HealthHandler {
	return &HealthHandler{
		primary:       primary,
		fallbackState: fallbackState,
	}
}

// Healthcheck reports 200 while at least one data path is usable. It never
// triggers a probe itself.
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	healthy, lastChecked := h.primary.Snapshot()
	breaker := h.fallbackState()

	primary := gin.H{"healthy": healthy}
	if !lastChecked.IsZero() {
		primary["lastChecked"] = lastChecked.UTC().Format(time.RFC3339)
	}
	body := gin.H{
		"status":   "ok",
		"primary":  primary,
		"fallback": gin.H{"breaker": breaker},
	}

	switch {
	case healthy:
	case breaker != "open":
		body["status"] = "degraded"
	default:
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, body)
}
