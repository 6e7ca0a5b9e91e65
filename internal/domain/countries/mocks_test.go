package countries

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchAllCountries(ctx context.Context) ([]types.Country, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Country), args.Error(1)
}

func (m *MockSource) FetchCapitalCoordinate(ctx context.Context, name string) (types.CapitalCoordinate, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(types.CapitalCoordinate), args.Error(1)
}

func (m *MockSource) FetchCountryDetail(ctx context.Context, name string) (types.CountryDetail, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(types.CountryDetail), args.Error(1)
}

func (m *MockSource) FetchSunTimes(ctx context.Context, lat, lng float64) (types.SunTimes, error) {
	args := m.Called(ctx, lat, lng)
	return args.Get(0).(types.SunTimes), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// syntheticCatalogue has eight countries: six south of the equator, one on it
// and one north of it.
func syntheticCatalogue() []types.Country {
	return []types.Country{
		{Name: "Brazil", Capital: "Brasília", Population: 212559409, Latitude: -10, Longitude: -55},
		{Name: "Norway", Capital: "Oslo", Population: 5379475, Latitude: 62, Longitude: 10},
		{Name: "Indonesia", Capital: "Jakarta", Population: 273523621, Latitude: -5, Longitude: 120},
		{Name: "Equatoria", Capital: "Midline", Population: 999999999, Latitude: 0, Longitude: 20},
		{Name: "Chile", Capital: "Santiago", Population: 19116209, Latitude: -30, Longitude: -71},
		{Name: "South Africa", Capital: "Pretoria", Population: 59308690, Latitude: -29, Longitude: 24},
		{Name: "Peru", Capital: "Lima", Population: 32971846, Latitude: -10, Longitude: -76},
		{Name: "Fiji", Capital: "Suva", Population: 896444, Latitude: -18, Longitude: 175},
	}
}
