package middleware

import (
	"net/http"
)

// DefaultMaxBodySize caps request bodies at 1MB. Event and login payloads
// are small; anything larger is either a client bug or abuse.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize wraps request bodies with http.MaxBytesReader so oversized
// payloads fail during decode instead of being buffered whole.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
