package interceptors

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// NewLoggingInterceptor logs the start and outcome of every HTTP request.
func NewLoggingInterceptor(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			logger.DebugContext(ctx, "HTTP request started", appendLoggerFields(ctx,
				"method", r.Method,
				"path", r.URL.Path,
				"peer", r.RemoteAddr,
			)...)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			fields := appendLoggerFields(ctx,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", duration.String(),
				"duration_ms", duration.Milliseconds(),
				"response_size_bytes", rec.written,
			)

			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "HTTP request failed", fields...)
			case rec.status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "HTTP request rejected", fields...)
			default:
				logger.InfoContext(ctx, "HTTP request completed", fields...)
			}
		})
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.written += n
	return n, err
}
