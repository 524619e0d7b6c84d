package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs one record per request once the handler returns. The
// level follows the status: 5xx is an error, 4xx a warning. logger is used
// as given; tag it with WithComponent beforehand.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				level := slog.LevelInfo
				switch {
				case status >= 500:
					level = slog.LevelError
				case status >= 400:
					level = slog.LevelWarn
				}

				logger.Log(r.Context(), level, "HTTP request completed",
					FieldRequestID, middleware.GetReqID(r.Context()),
					FieldMethod, r.Method,
					FieldPath, r.URL.Path,
					FieldQuery, r.URL.RawQuery,
					FieldStatusCode, status,
					FieldDuration, time.Since(start).Milliseconds(),
					FieldBytes, ww.BytesWritten(),
					FieldClientIP, r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
