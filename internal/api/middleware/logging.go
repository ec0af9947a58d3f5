package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/logger"
	"github.com/google/uuid"
)

// LoggerKey stores the request-scoped *slog.Logger in the request context.
const LoggerKey = logger.ContextKey

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// main middleware
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()

		// Correlation ID
		correlationID := r.Header.Get("X-Request-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", correlationID)

		// every log line below this point carries the request fields
		requestLogger := slog.Default().With(
			slog.String("correlation_id", correlationID),
			slog.String("http_method", r.Method),
			slog.String("http_path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)

		requestLogger.Debug("Incoming request")

		ctx := WithLogger(r.Context(), requestLogger)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r.WithContext(ctx))

		requestLogger.Info("Request Completed", slog.Int("http_status", rw.statusCode), slog.Duration("duration", time.Since(start)))

	})
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return logger.WithContext(ctx, l)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx)
}
