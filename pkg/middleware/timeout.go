package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "cleanroom/pkg/errors"
	httputil "cleanroom/pkg/http"
	"cleanroom/pkg/logger"
)

// deadlineWriter forwards handler output until the request deadline claims
// the response; after that every handler write is discarded.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	started bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired || dw.started {
		return
	}
	dw.started = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	dw.started = true
	return dw.ResponseWriter.Write(b)
}

// claim marks the writer expired and reports whether the handler had not
// started its response yet.
func (dw *deadlineWriter) claim() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return !dw.started
}

// RequestTimeout bounds each request by timeout. A handler still running at
// the deadline gets a cancelled context and the client gets a
// SERVICE_UNAVAILABLE error body, unless the handler already began writing.
func RequestTimeout(timeout time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	timeoutErr := apperrors.New(apperrors.CodeUnavailable,
		fmt.Sprintf("request did not complete within %s", timeout), http.StatusServiceUnavailable)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !dw.claim() {
					return
				}
				log.Warn("request timed out",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				if err := httputil.WriteError(w, timeoutErr); err != nil {
					log.Error("failed to write timeout response", "error", err)
				}
			}
		})
	}
}
