package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObservabilityMiddleware_RedactsTokenPath(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	router := gin.New()
	router.Use(ObservabilityMiddleware())
	router.GET("/api/v1/testimonials/request/:token", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/testimonials/request/tok-123", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "/api/v1/testimonials/request/:token", fields["path"])
		assert.NotContains(t, fields, "route_params")
	}
}

func TestObservabilityMiddleware_KeepsPlainRouteParams(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	router := gin.New()
	router.Use(ObservabilityMiddleware())
	router.DELETE("/api/v1/admin/testimonials/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/testimonials/42", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, map[string]string{"id": "42"}, fields["route_params"])
	}
}
