package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/backend/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(100, 5).RateLimit())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := performRequest(router, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(0.001, 2).RateLimit())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, performRequest(router, nil).Code)
	assert.Equal(t, http.StatusOK, performRequest(router, nil).Code)

	w := performRequest(router, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimitPerIP(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiter(0.001, 1).RateLimit())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := performRequest(router, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	assert.Equal(t, http.StatusOK, first.Code)
	blocked := performRequest(router, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

	// A different client keeps its own budget.
	other := performRequest(router, map[string]string{"X-Forwarded-For": "10.0.0.2"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimitSweepEvictsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.maxIdle = time.Millisecond

	rl.mu.Lock()
	rl.limiters["10.0.0.9"] = &ipLimiter{lastSeen: time.Now().Add(-time.Second)}
	rl.sweep(time.Now())
	remaining := len(rl.limiters)
	rl.mu.Unlock()

	assert.Zero(t, remaining)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	log := logging.NewTestLogger()
	router := gin.New()
	router.Use(ErrorHandler(log))
	router.GET("/ping", func(c *gin.Context) { panic("boom") })

	w := performRequest(router, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	assert.NotContains(t, w.Body.String(), "boom", "panic detail must stay in logs")
	assert.True(t, log.HasEntry("error", "panic recovered"))
}

func TestRequestLoggerAssignsID(t *testing.T) {
	log := logging.NewTestLogger()
	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(router, nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "request handled", entries[0].Message)
	assert.Equal(t, w.Header().Get(requestIDHeader), entries[0].Fields["request_id"])
	assert.Equal(t, http.StatusOK, entries[0].Fields["status"])
}

func TestRequestLoggerPreservesIncomingID(t *testing.T) {
	log := logging.NewTestLogger()
	router := gin.New()
	router.Use(RequestLogger(log))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(router, map[string]string{requestIDHeader: "upstream-id-42"})
	assert.Equal(t, "upstream-id-42", w.Header().Get(requestIDHeader))
}
