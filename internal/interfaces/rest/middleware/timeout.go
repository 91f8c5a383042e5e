package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/intl"
	"github.com/DanielPopoola/consultation-relay/internal/interfaces/rest"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			l := intl.UseLocalizer(ctx)
			body, _ := json.Marshal(rest.ErrorResponse{
				Message: l.T("Errors.Timeout"),
				Error:   "request timeout",
			})

			timeoutHandler := http.TimeoutHandler(next, timeout, string(body))

			timeoutHandler.ServeHTTP(&timeoutBodyWriter{ResponseWriter: w, ctx: ctx}, r)
		})
	}
}

// timeoutBodyWriter labels the TimeoutHandler error body as JSON. Responses
// from the wrapped handler keep whatever Content-Type it set.
type timeoutBodyWriter struct {
	http.ResponseWriter
	ctx context.Context
}

func (w *timeoutBodyWriter) WriteHeader(status int) {
	h := w.Header()
	if status == http.StatusServiceUnavailable &&
		errors.Is(w.ctx.Err(), context.DeadlineExceeded) &&
		h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json; charset=utf-8")
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *timeoutBodyWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
