package shield

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/domscope/kit"
)

// TraceID returns middleware that assigns every request a random ID. The ID
// is stored with kit.WithRequestID, echoed in the X-Request-ID header and
// attached to a per-request logger derived from logger (nil means
// slog.Default()).
func TraceID(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := make([]byte, 8)
			rand.Read(id)
			reqID := hex.EncodeToString(id)

			ctx := kit.WithRequestID(r.Context(), reqID)
			w.Header().Set("X-Request-ID", reqID)

			l := logger.With(
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx = context.WithValue(ctx, LoggerKey, l)
			l.Debug("request")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
