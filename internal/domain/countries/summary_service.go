package countries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-travelbot-api/internal/geo"
	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
)

// ReferencePoint is the fixed location summary distances are measured from.
type ReferencePoint struct {
	Latitude  float64
	Longitude float64
}

// OfficeLocation is the Cape Town office.
var OfficeLocation = ReferencePoint{Latitude: -33.9759724, Longitude: 18.4592032}

var _ SummaryService = (*SummaryServiceImpl)(nil)

// SummaryService assembles traveller-facing country summaries.
type SummaryService interface {
	GetSummary(ctx context.Context, countryName string) (types.CountrySummary, error)
	GetRandomSouthernSummary(ctx context.Context) (types.CountrySummary, error)
	GetSunTimes(ctx context.Context, countryName string) (types.SunTimes, error)
}

type SummaryServiceImpl struct {
	logger    *slog.Logger
	source    Source
	caches    *Caches
	catalog   CatalogService
	reference ReferencePoint
}

func NewSummaryService(source Source, caches *Caches, catalog CatalogService, reference ReferencePoint, logger *slog.Logger) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		logger:    logger,
		source:    source,
		caches:    caches,
		catalog:   catalog,
		reference: reference,
	}
}

// GetSummary returns the summary for countryName, building it on first use.
// A failure at any step caches nothing and is returned as is.
func (s *SummaryServiceImpl) GetSummary(ctx context.Context, countryName string) (types.CountrySummary, error) {
	ctx, span := otel.Tracer("SummaryService").Start(ctx, "GetSummary", trace.WithAttributes(
		attribute.String("country.name", countryName),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetSummary"), slog.String("country", countryName))

	if strings.TrimSpace(countryName) == "" {
		err := fmt.Errorf("%w: country name is required", types.ErrBadRequest)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Missing country name")
		return types.CountrySummary{}, err
	}

	summary, err := s.caches.Summaries.GetOrCompute(ctx, countryName, func(ctx context.Context) (types.CountrySummary, error) {
		return s.buildSummary(ctx, l, countryName)
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to build country summary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Summary unavailable")
		return types.CountrySummary{}, err
	}

	span.SetStatus(codes.Ok, "Summary served")
	return summary, nil
}

// GetRandomSouthernSummary summarises a random southern-hemisphere country.
func (s *SummaryServiceImpl) GetRandomSouthernSummary(ctx context.Context) (types.CountrySummary, error) {
	ctx, span := otel.Tracer("SummaryService").Start(ctx, "GetRandomSouthernSummary")
	defer span.End()

	country, err := s.catalog.GetRandomSouthern(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Random selection failed")
		return types.CountrySummary{}, err
	}
	span.SetAttributes(attribute.String("country.name", country.Name))

	summary, err := s.GetSummary(ctx, country.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Summary unavailable")
		return types.CountrySummary{}, err
	}

	span.SetStatus(codes.Ok, "Random summary served")
	return summary, nil
}

// GetSunTimes returns today's sunrise and sunset at countryName's capital.
func (s *SummaryServiceImpl) GetSunTimes(ctx context.Context, countryName string) (types.SunTimes, error) {
	ctx, span := otel.Tracer("SummaryService").Start(ctx, "GetSunTimes", trace.WithAttributes(
		attribute.String("country.name", countryName),
	))
	defer span.End()

	if strings.TrimSpace(countryName) == "" {
		err := fmt.Errorf("%w: country name is required", types.ErrBadRequest)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Missing country name")
		return types.SunTimes{}, err
	}

	coord, err := s.capitalCoordinate(ctx, countryName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Capital unavailable")
		return types.SunTimes{}, err
	}
	sun, err := s.sunTimes(ctx, coord)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Sun times unavailable")
		return types.SunTimes{}, err
	}

	span.SetStatus(codes.Ok, "Sun times served")
	return sun, nil
}

// buildSummary runs the uncached part of GetSummary. The full detail is a
// separate upstream call from the capital lookup; call counts depend on it.
func (s *SummaryServiceImpl) buildSummary(ctx context.Context, l *slog.Logger, countryName string) (types.CountrySummary, error) {
	l.InfoContext(ctx, "Building country summary")

	coord, err := s.capitalCoordinate(ctx, countryName)
	if err != nil {
		return types.CountrySummary{}, err
	}

	sun, err := s.sunTimes(ctx, coord)
	if err != nil {
		return types.CountrySummary{}, err
	}

	detail, err := s.source.FetchCountryDetail(ctx, countryName)
	if err != nil {
		return types.CountrySummary{}, err
	}

	capital := detail.CapitalInfo
	distance := geo.DistanceKm(s.reference.Latitude, s.reference.Longitude, capital.Latitude, capital.Longitude)

	l.DebugContext(ctx, "Country summary assembled", slog.Float64("distance_km", distance))
	return types.CountrySummary{
		Country: types.Country{
			Name:       detail.Name,
			Capital:    detail.Capital,
			Population: detail.Population,
			Latitude:   capital.Latitude,
			Longitude:  capital.Longitude,
		},
		Sunrise:                      sun.Sunrise,
		Sunset:                       sun.Sunset,
		TotalLanguages:               detail.TotalLanguages,
		DriveSide:                    detail.DriveSide,
		Currency:                     detail.Currency,
		CurrencyCode:                 detail.CurrencyCode,
		FlagURL:                      detail.FlagURL,
		MapURL:                       detail.MapURL,
		DistanceFromReferencePointKm: distance,
	}, nil
}

func (s *SummaryServiceImpl) capitalCoordinate(ctx context.Context, countryName string) (types.CapitalCoordinate, error) {
	return s.caches.Capitals.GetOrCompute(ctx, countryName, func(ctx context.Context) (types.CapitalCoordinate, error) {
		return s.source.FetchCapitalCoordinate(ctx, countryName)
	})
}

func (s *SummaryServiceImpl) sunTimes(ctx context.Context, coord types.CapitalCoordinate) (types.SunTimes, error) {
	key := sunTimesKey(coord.Latitude, coord.Longitude)
	return s.caches.SunTimes.GetOrCompute(ctx, key, func(ctx context.Context) (types.SunTimes, error) {
		return s.source.FetchSunTimes(ctx, coord.Latitude, coord.Longitude)
	})
}
