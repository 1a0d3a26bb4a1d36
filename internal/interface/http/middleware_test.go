package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/config"
	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

func TestIPRateLimiter_BurstThenRefill(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("1.1.1.1"))
	require.True(t, limiter.allow("1.1.1.1"))
	require.False(t, limiter.allow("1.1.1.1"))
	require.True(t, limiter.allow("2.2.2.2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("1.1.1.1"))
	require.False(t, limiter.allow("1.1.1.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("1.1.1.1"))
	require.Len(t, limiter.visitors, 1)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", token)

	token, err = bearerToken("  bearer   xyz ")
	require.NoError(t, err)
	require.Equal(t, "xyz", token)

	_, err = bearerToken("")
	require.ErrorIs(t, err, errMissingAuthorization)
	_, err = bearerToken("Basic abc")
	require.ErrorIs(t, err, errMalformedBearer)
	_, err = bearerToken("Bearer")
	require.ErrorIs(t, err, errMalformedBearer)
}

func TestResolveOrigin(t *testing.T) {
	require.Equal(t, "*", resolveOrigin("http://a.test", nil))
	require.Equal(t, "*", resolveOrigin("http://a.test", []string{"http://b.test", "*"}))
	require.Equal(t, "http://A.test", resolveOrigin("http://A.test", []string{"http://b.test", "http://a.test"}))
	require.Equal(t, "http://b.test", resolveOrigin("http://evil.test", []string{"http://b.test"}))
}

func TestWithRetry_ReplaysFailedReadsOnly(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.RetryConfig{Enabled: true, MaxAttempts: 3, Exclude: []string{"/api/v1/users/export"}}

	calls := 0
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Attempt", "3")
		_, _ = w.Write([]byte("ok"))
	})
	handler := withRetry(flaky, cfg, logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, "3", rec.Header().Get("X-Attempt"))
	require.Equal(t, 3, calls)

	calls = 0
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dreams", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, calls)

	calls = 0
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/export", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, calls)
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calls := 0
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(failing, config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}, logger)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dreams", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 2, calls)
}

func TestErrorHandlingMiddleware_CancelledRequestIsNotAServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	engine := gin.New()
	engine.Use(errorHandlingMiddleware(logger))
	engine.GET("/dreams", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(dream.CodeCancelled, "request cancelled", context.Canceled))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dreams", nil))
	require.Equal(t, statusClientClosedRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"request_cancelled"`)
	require.Contains(t, logs.String(), "level=WARN")
	require.NotContains(t, logs.String(), "level=ERROR")
}
