package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func rateLimitedRouter(r rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(r, burst))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	router := rateLimitedRouter(rate.Limit(1), 2)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestRateLimitIsPerClientIP(t *testing.T) {
	router := rateLimitedRouter(rate.Limit(1), 1)

	for _, addr := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}
}

func TestSweepLimitersDropsIdleEntries(t *testing.T) {
	now := time.Now()
	limiters := map[string]*ipLimiter{
		"10.0.0.1": {limiter: rate.NewLimiter(1, 1), lastSeen: now.Add(-2 * limiterIdleEviction)},
		"10.0.0.2": {limiter: rate.NewLimiter(1, 1), lastSeen: now},
	}

	sweepLimiters(limiters, now)

	assert.Len(t, limiters, 1)
	assert.Contains(t, limiters, "10.0.0.2")
}
