package middleware

import (
	"net/http"
	"time"

	"bonchef/internal/infra"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger writes one access log line per request.
func Logger(l *infra.Logger) func(http.Handler) http.Handler {
	l = infra.LoggerOrDiscard(l)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			l.Info().
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("user_id", UserIDFromContext(r.Context())).
				Msgf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
		})
	}
}
