package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, "leads", rate.Limit(0.1), 2)
	router := gin.New()
	router.POST("/leads", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leads", http.NoBody)
		req.RemoteAddr = "203.0.113.7:4321"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, "leads", rate.Limit(0.1), 1)
	router := gin.New()
	router.POST("/leads", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, addr := range []string{"203.0.113.7:1", "203.0.113.8:1"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leads", http.NoBody)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimiter_PruneDropsIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, "test", rate.Limit(1), 1)
	rl.getVisitor("203.0.113.7")

	rl.prune()

	assert.Empty(t, rl.visitors)
}
