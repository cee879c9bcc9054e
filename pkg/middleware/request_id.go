package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID ensures every request carries a request ID: an incoming
// X-Request-ID header is propagated, otherwise a fresh one is generated. The
// ID is stored on the request context for logging and echoed on the
// response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID, or "" when the
// context carries none.
func GetRequestID(ctx context.Context) string {
	return logger.RequestID(ctx)
}

// newRequestID returns a random 16-character hex string.
func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
