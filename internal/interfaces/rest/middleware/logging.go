package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/pkg/requestid"
)

// RequestLogger assigns a request id (reusing a valid incoming X-Request-ID),
// echoes it on the response and logs the request once it completes.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(requestid.Header)
			if id == "" || len(id) > 128 {
				id = requestid.New()
			}
			w.Header().Set(requestid.Header, id)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(requestid.With(r.Context(), id)))

			status := rec.status
			var level slog.Level
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			default:
				level = slog.LevelInfo
			}

			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("response_size", rec.size),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
