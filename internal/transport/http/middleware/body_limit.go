package middleware

import (
	"net/http"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// DefaultBodyLimit caps JSON request bodies at 1MB.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects oversized bodies up front and caps reads for the rest.
func BodyLimit(maxBytes int64, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeErr(w, r, domain.ErrInvalidField("body", "too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
