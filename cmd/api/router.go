package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/loci-travelbot-api/pkg/interceptors"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	r := mux.NewRouter()

	tracer := otel.GetTracerProvider().Tracer("travelbot/api")

	// Setup middleware chain
	chain := []mux.MiddlewareFunc{
		interceptors.NewRequestIDInterceptor("X-Request-ID"),
		interceptors.NewTracingInterceptor(tracer),
		interceptors.NewRecoveryInterceptor(deps.Logger),
		interceptors.NewLoggingInterceptor(deps.Logger),
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, interceptors.NewRateLimitInterceptor(limiter))
	}
	chain = append(chain, deps.Metrics.Middleware())
	r.Use(chain...)

	// mux skips Use middleware when no route matches
	r.NotFoundHandler = withChain(http.NotFoundHandler(), chain)
	r.MethodNotAllowedHandler = withChain(http.HandlerFunc(methodNotAllowed), chain)

	// Register country routes
	deps.CountriesHandler.Register(r)
	deps.Logger.Info("registered country routes", "prefix", "/api/countries")

	// Register health and metrics routes
	registerUtilityRoutes(r, deps)

	// Enable CORS for the browser client
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
	})

	return corsHandler.Handler(r)
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(r *mux.Router, deps *Dependencies) {
	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	deps.Logger.Info("registered health check", "path", "/health")

	// Readiness check endpoint
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	}).Methods(http.MethodGet)
	deps.Logger.Info("registered readiness check", "path", "/ready")

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}

// withChain applies chain to h in the same order mux applies Use middleware.
func withChain(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
