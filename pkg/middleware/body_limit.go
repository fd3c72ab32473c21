package middleware

import (
	"net/http"

	apperrors "cleanroom/pkg/errors"
	httputil "cleanroom/pkg/http"
)

// MaxRequestSize caps request bodies at maxBytes. Reads past the cap fail
// with *http.MaxBytesError; a declared Content-Length over the cap is
// rejected before the handler runs.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
