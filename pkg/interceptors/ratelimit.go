package interceptors

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimitInterceptor rejects requests beyond the limiter's budget with 429.
func NewRateLimitInterceptor(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				retryAfter := time.Duration(float64(time.Second) / float64(limiter.Limit()))
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
