package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/dreamvision/internal/infra/config"
)

// withRetry replays read requests that fail with a 5xx. Writes are never
// replayed: creating or interpreting a dream spends entitlement.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !replayable(r, cfg.Exclude) {
			handler.ServeHTTP(w, r)
			return
		}

		for attempt := 1; ; attempt++ {
			recorder := newRetryResponseRecorder(w)
			handler.ServeHTTP(recorder, r)
			if recorder.statusCode < http.StatusInternalServerError || attempt >= cfg.MaxAttempts {
				recorder.commit()
				return
			}

			logger.Warn("read failed, retrying", "path", r.URL.Path, "status", recorder.statusCode, "attempt", attempt)
			if !backoff(r, cfg.BaseBackoff, attempt) {
				recorder.commit()
				return
			}
		}
	})
}

func replayable(r *http.Request, exclude []string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	for _, prefix := range exclude {
		if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

// backoff waits base*2^(attempt-1) and reports false when the client went away first.
func backoff(r *http.Request, base time.Duration, attempt int) bool {
	delay := base << (attempt - 1)
	if delay <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

type retryResponseRecorder struct {
	dst        http.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	statusCode int
	wroteHead  bool
}

func newRetryResponseRecorder(dst http.ResponseWriter) *retryResponseRecorder {
	return &retryResponseRecorder{
		dst:        dst,
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (r *retryResponseRecorder) Header() http.Header {
	return r.header
}

func (r *retryResponseRecorder) WriteHeader(status int) {
	if r.wroteHead {
		return
	}
	r.statusCode = status
	r.wroteHead = true
}

func (r *retryResponseRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *retryResponseRecorder) Flush() {}

func (r *retryResponseRecorder) commit() {
	dstHeader := r.dst.Header()
	for k, values := range r.header {
		dstHeader[k] = append([]string(nil), values...)
	}
	r.dst.WriteHeader(r.statusCode)
	if r.body.Len() > 0 {
		_, _ = r.dst.Write(r.body.Bytes())
	}
}
