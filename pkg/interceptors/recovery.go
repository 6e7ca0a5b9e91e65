package interceptors

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryInterceptor turns a handler panic into a 500 response.
func NewRecoveryInterceptor(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered", appendLoggerFields(r.Context(),
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)...)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
