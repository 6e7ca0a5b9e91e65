package countries

import (
	"context"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
)

// Source is the boundary to the third-party data providers.
// *upstream.Client satisfies it.
type Source interface {
	FetchAllCountries(ctx context.Context) ([]types.Country, error)
	FetchCapitalCoordinate(ctx context.Context, name string) (types.CapitalCoordinate, error)
	FetchCountryDetail(ctx context.Context, name string) (types.CountryDetail, error)
	FetchSunTimes(ctx context.Context, lat, lng float64) (types.SunTimes, error)
}
