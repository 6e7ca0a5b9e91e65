package countries

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
)

const topCountriesLimit = 5

var _ CatalogService = (*CatalogServiceImpl)(nil)

// CatalogService answers questions over the full country list.
type CatalogService interface {
	GetAll(ctx context.Context) ([]types.Country, error)
	GetTopFive(ctx context.Context) ([]types.Country, error)
	GetRandomSouthern(ctx context.Context) (types.Country, error)
}

type CatalogServiceImpl struct {
	logger *slog.Logger
	source Source
	caches *Caches
	intN   func(n int) int
}

func NewCatalogService(source Source, caches *Caches, logger *slog.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		logger: logger,
		source: source,
		caches: caches,
		intN:   rand.Intn,
	}
}

// GetAll returns the catalogue, fetching it at most once per process.
// The returned slice is a copy; callers may modify it freely.
func (s *CatalogServiceImpl) GetAll(ctx context.Context) ([]types.Country, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "GetAll")
	defer span.End()

	l := s.logger.With(slog.String("method", "GetAll"))

	all, err := s.caches.Countries.GetOrCompute(ctx, allCountriesKey, func(ctx context.Context) ([]types.Country, error) {
		l.InfoContext(ctx, "Fetching country catalogue from upstream")
		return s.source.FetchAllCountries(ctx)
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to load country catalogue", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalogue unavailable")
		return nil, err
	}

	span.SetAttributes(attribute.Int("countries.count", len(all)))
	span.SetStatus(codes.Ok, "Catalogue loaded")
	return slices.Clone(all), nil
}

// GetTopFive returns the five most populous southern-hemisphere countries,
// keeping catalogue order between equal populations.
func (s *CatalogServiceImpl) GetTopFive(ctx context.Context) ([]types.Country, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "GetTopFive")
	defer span.End()

	all, err := s.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalogue unavailable")
		return nil, err
	}

	southern := southernHemisphere(all)
	slices.SortStableFunc(southern, func(a, b types.Country) int {
		return cmp.Compare(b.Population, a.Population)
	})
	if len(southern) > topCountriesLimit {
		southern = southern[:topCountriesLimit]
	}

	span.SetAttributes(attribute.Int("countries.count", len(southern)))
	span.SetStatus(codes.Ok, "Top five computed")
	return southern, nil
}

// GetRandomSouthern picks one southern-hemisphere country uniformly at random.
func (s *CatalogServiceImpl) GetRandomSouthern(ctx context.Context) (types.Country, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "GetRandomSouthern")
	defer span.End()

	l := s.logger.With(slog.String("method", "GetRandomSouthern"))

	all, err := s.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalogue unavailable")
		return types.Country{}, err
	}

	southern := southernHemisphere(all)
	if len(southern) == 0 {
		err := fmt.Errorf("%w: catalogue has no southern-hemisphere country", types.ErrEmptyResult)
		l.ErrorContext(ctx, "No southern-hemisphere country to choose from", slog.Int("catalogue_size", len(all)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty selection")
		return types.Country{}, err
	}

	picked := southern[s.intN(len(southern))]
	l.DebugContext(ctx, "Picked random southern country", slog.String("country", picked.Name))
	span.SetAttributes(attribute.String("country.name", picked.Name))
	span.SetStatus(codes.Ok, "Country picked")
	return picked, nil
}

func southernHemisphere(all []types.Country) []types.Country {
	out := make([]types.Country, 0, len(all))
	for _, c := range all {
		if c.InSouthernHemisphere() {
			out = append(out, c)
		}
	}
	return out
}
