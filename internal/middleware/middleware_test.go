package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("done"))
})

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := newTokenBucket(2, 1, func() time.Time { return now })

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	now = now.Add(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "refill is capped at capacity")
}

func TestRateLimit_PerClientIP(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	t.Cleanup(limiter.Stop)
	h := RateLimit(limiter)(okHandler)

	do := func(addr, path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111", "/api/TextAnalyzer"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:2222", "/api/TextAnalyzer"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1111", "/api/TextAnalyzer"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:3333", "/health"))
}

func TestRateLimiter_KeepsBucketsThatAreStillDenied(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 0)
	t.Cleanup(limiter.Stop)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("busy"))
	assert.True(t, limiter.Allow("quiet"))

	for i := 0; i < 3; i++ {
		now = now.Add(5 * time.Minute)
		assert.False(t, limiter.Allow("busy"))
	}
	limiter.evictIdle(now)

	limiter.mu.RLock()
	_, busyKept := limiter.buckets["busy"]
	_, quietKept := limiter.buckets["quiet"]
	limiter.mu.RUnlock()
	assert.True(t, busyKept, "a bucket hit at zero tokens is active")
	assert.False(t, quietKept)
	assert.False(t, limiter.Allow("busy"), "quota is not reset by cleanup")
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth([]string{"k-1", "k-2"})(okHandler)

	tests := []struct {
		name   string
		header map[string]string
		path   string
		want   int
	}{
		{"missing", nil, "/api/TextAnalyzer", http.StatusUnauthorized},
		{"bearer", map[string]string{"Authorization": "Bearer k-2"}, "/api/TextAnalyzer", http.StatusOK},
		{"raw", map[string]string{"Authorization": "k-1"}, "/api/TextAnalyzer", http.StatusOK},
		{"functions key", map[string]string{"x-functions-key": "k-1"}, "/api/TextAnalyzer", http.StatusOK},
		{"wrong", map[string]string{"Authorization": "Bearer nope"}, "/api/TextAnalyzer", http.StatusUnauthorized},
		{"probe skipped", nil, "/healthz", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAPIKeyAuth_NoKeysIsAnonymous(t *testing.T) {
	h := APIKeyAuth(nil)(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/TextAnalyzer", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	healthy := CheckerFunc(func(context.Context) error { return nil })
	broken := CheckerFunc(func(context.Context) error { return errors.New("store unreachable") })

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"store": healthy})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"store": broken})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "store unreachable", body.Checks["store"].Message)
}

func TestLogger_InjectsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	var sawLogger bool

	h := Logger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())
		sawLogger = l.GetLevel() != zerolog.Disabled
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/TextAnalyzer", nil))

	assert.True(t, sawLogger)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "POST", line["method"])
	assert.Equal(t, "/api/TextAnalyzer", line["path"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
}

func TestMetricsMiddleware_CountsOutcome(t *testing.T) {
	beforeOK := atomic.LoadUint64(&globalMetrics.RequestsSuccess)
	beforeFail := atomic.LoadUint64(&globalMetrics.RequestsFailed)

	MetricsMiddleware(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	MetricsMiddleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, beforeOK+1, atomic.LoadUint64(&globalMetrics.RequestsSuccess))
	assert.Equal(t, beforeFail+1, atomic.LoadUint64(&globalMetrics.RequestsFailed))

	rec := httptest.NewRecorder()
	MetricsHandler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "analyses_stored")
}
