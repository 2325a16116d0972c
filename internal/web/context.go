package web

import (
	"net/http"

	"github.com/JonMunkholm/gradebook/internal/logging"
)

// requestMetadata puts a logger carrying the client IP into the request
// context so service logs can be traced back to a client.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Base(r.Context()).With("ip", r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}
