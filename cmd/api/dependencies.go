package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/loci-travelbot-api/internal/domain/countries"
	countrieshandler "github.com/FACorreiaa/loci-travelbot-api/internal/domain/countries/handler"
	"github.com/FACorreiaa/loci-travelbot-api/internal/upstream"
	"github.com/FACorreiaa/loci-travelbot-api/pkg/config"
	"github.com/FACorreiaa/loci-travelbot-api/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Upstream sources
	Upstream *upstream.Client

	// Process-lifetime cache tiers
	Caches *countries.Caches

	// Services
	CatalogService countries.CatalogService
	SummaryService countries.SummaryService

	// Handlers
	CountriesHandler *countrieshandler.CountriesHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to init observability: %w", err)
	}

	deps.initUpstream()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initObservability builds the metrics registry
func (d *Dependencies) initObservability() error {
	d.Registry = prometheus.NewRegistry()
	if err := d.Registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := d.Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}
	d.Metrics = observability.NewMetrics(d.Registry)
	d.Logger.Info("metrics registry initialized")
	return nil
}

// initUpstream initializes the third-party source client
func (d *Dependencies) initUpstream() {
	d.Upstream = upstream.NewClient(upstream.Config{
		RestCountriesURL: d.Config.Upstream.RestCountriesURL,
		SunriseSunsetURL: d.Config.Upstream.SunriseSunsetURL,
		Timeout:          d.Config.Upstream.Timeout,
	}, d.Metrics, d.Logger)

	d.Logger.Info("upstream client initialized",
		"restcountries", d.Config.Upstream.RestCountriesURL,
		"sunrise_sunset", d.Config.Upstream.SunriseSunsetURL,
	)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.Caches = countries.NewCaches(d.Metrics, d.Logger)

	reference := countries.ReferencePoint{
		Latitude:  d.Config.Reference.Latitude,
		Longitude: d.Config.Reference.Longitude,
	}
	if reference == (countries.ReferencePoint{}) {
		reference = countries.OfficeLocation
	}

	catalog := countries.NewCatalogService(d.Upstream, d.Caches, d.Logger)
	d.CatalogService = catalog
	d.SummaryService = countries.NewSummaryService(d.Upstream, d.Caches, catalog, reference, d.Logger)

	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.CountriesHandler = countrieshandler.NewCountriesHandler(d.CatalogService, d.SummaryService, d.Logger)
	d.Logger.Info("handlers initialized")
}
