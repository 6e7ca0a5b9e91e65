// Package upstream adapts the public restcountries and sunrise-sunset APIs
// into typed domain values.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-travelbot-api/internal/types"
	"github.com/FACorreiaa/loci-travelbot-api/pkg/observability"
)

const (
	SourceRestCountries = "restcountries"
	SourceSunriseSunset = "sunrise-sunset"

	DefaultRestCountriesURL = "https://restcountries.com/v3.1"
	DefaultSunriseSunsetURL = "https://api.sunrise-sunset.org"
	DefaultTimeout          = 12 * time.Second

	catalogueFields = "name,capital,population,latlng"
	capitalFields   = "capitalInfo"
	detailFields    = "name,capital,population,latlng,flags,currencies,languages,car,maps,capitalInfo"
)

// Config points the client at its upstream sources.
type Config struct {
	RestCountriesURL string
	SunriseSunsetURL string
	Timeout          time.Duration
}

// Client fetches countries, country detail and sun times over HTTP.
type Client struct {
	httpClient       *http.Client
	restCountriesURL string
	sunriseSunsetURL string
	metrics          *observability.Metrics
	logger           *slog.Logger
}

// NewClient builds a Client, falling back to the public endpoints for empty URLs.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if cfg.RestCountriesURL == "" {
		cfg.RestCountriesURL = DefaultRestCountriesURL
	}
	if cfg.SunriseSunsetURL == "" {
		cfg.SunriseSunsetURL = DefaultSunriseSunsetURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		restCountriesURL: strings.TrimRight(cfg.RestCountriesURL, "/"),
		sunriseSunsetURL: strings.TrimRight(cfg.SunriseSunsetURL, "/"),
		metrics:          metrics,
		logger:           logger,
	}
}

// FetchAllCountries returns the whole catalogue in upstream order.
func (c *Client) FetchAllCountries(ctx context.Context) ([]types.Country, error) {
	ctx, span := otel.Tracer("UpstreamClient").Start(ctx, "FetchAllCountries")
	defer span.End()

	endpoint := c.restCountriesURL + "/all?fields=" + catalogueFields

	var payload []restCountry
	if err := c.getJSON(ctx, SourceRestCountries, endpoint, &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalogue fetch failed")
		return nil, err
	}

	countries := make([]types.Country, 0, len(payload))
	for _, rc := range payload {
		lat, lng := rc.position()
		countries = append(countries, types.Country{
			Name:       rc.Name.Common,
			Capital:    rc.capital(),
			Population: rc.Population,
			Latitude:   lat,
			Longitude:  lng,
		})
	}

	span.SetAttributes(attribute.Int("countries.count", len(countries)))
	span.SetStatus(codes.Ok, "catalogue fetched")
	return countries, nil
}

// FetchCapitalCoordinate runs the detail lookup restricted to capital info.
func (c *Client) FetchCapitalCoordinate(ctx context.Context, name string) (types.CapitalCoordinate, error) {
	ctx, span := otel.Tracer("UpstreamClient").Start(ctx, "FetchCapitalCoordinate", trace.WithAttributes(
		attribute.String("country.name", name),
	))
	defer span.End()

	rc, err := c.lookupByName(ctx, name, capitalFields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "capital lookup failed")
		return types.CapitalCoordinate{}, err
	}

	lat, lng := rc.capitalPosition()
	span.SetStatus(codes.Ok, "capital resolved")
	return types.CapitalCoordinate{Latitude: lat, Longitude: lng}, nil
}

// FetchCountryDetail returns the full detail payload for name.
func (c *Client) FetchCountryDetail(ctx context.Context, name string) (types.CountryDetail, error) {
	ctx, span := otel.Tracer("UpstreamClient").Start(ctx, "FetchCountryDetail", trace.WithAttributes(
		attribute.String("country.name", name),
	))
	defer span.End()

	rc, err := c.lookupByName(ctx, name, detailFields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail lookup failed")
		return types.CountryDetail{}, err
	}

	lat, lng := rc.position()
	capLat, capLng := rc.capitalPosition()
	cur := rc.Currencies.first()

	span.SetStatus(codes.Ok, "detail resolved")
	return types.CountryDetail{
		Name:           rc.Name.Common,
		Capital:        rc.capital(),
		Population:     rc.Population,
		Latitude:       lat,
		Longitude:      lng,
		CapitalInfo:    types.CapitalCoordinate{Latitude: capLat, Longitude: capLng},
		FlagURL:        rc.Flags.PNG,
		Currency:       cur.Name,
		CurrencyCode:   cur.Symbol,
		TotalLanguages: len(rc.Languages),
		DriveSide:      rc.Car.Side,
		MapURL:         rc.Maps.GoogleMaps,
	}, nil
}

// FetchSunTimes returns today's UTC sunrise and sunset at the given point.
func (c *Client) FetchSunTimes(ctx context.Context, lat, lng float64) (types.SunTimes, error) {
	ctx, span := otel.Tracer("UpstreamClient").Start(ctx, "FetchSunTimes", trace.WithAttributes(
		attribute.Float64("lat", lat),
		attribute.Float64("lng", lng),
	))
	defer span.End()

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("formatted", "0")
	q.Set("date", "today")
	endpoint := c.sunriseSunsetURL + "/json?" + q.Encode()

	var payload sunResponse
	if err := c.getJSON(ctx, SourceSunriseSunset, endpoint, &payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sun times fetch failed")
		return types.SunTimes{}, err
	}
	// Failures can arrive in-band with a 200.
	if payload.Status != "" && payload.Status != "OK" {
		err := &types.UpstreamError{Source: SourceSunriseSunset, Err: fmt.Errorf("status %s", payload.Status)}
		c.logger.WarnContext(ctx, "sun times request rejected", slog.String("status", payload.Status))
		span.RecordError(err)
		span.SetStatus(codes.Error, "sun times rejected")
		return types.SunTimes{}, err
	}

	span.SetStatus(codes.Ok, "sun times fetched")
	return types.SunTimes{Sunrise: payload.Results.Sunrise, Sunset: payload.Results.Sunset}, nil
}

// lookupByName queries restcountries by name. A 404 or an empty array means
// the country is unknown.
func (c *Client) lookupByName(ctx context.Context, name, fields string) (restCountry, error) {
	if strings.TrimSpace(name) == "" {
		return restCountry{}, fmt.Errorf("%w: empty country name", types.ErrBadRequest)
	}
	endpoint := fmt.Sprintf("%s/name/%s?fields=%s", c.restCountriesURL, url.PathEscape(name), fields)

	var payload []restCountry
	if err := c.getJSON(ctx, SourceRestCountries, endpoint, &payload); err != nil {
		var upErr *types.UpstreamError
		if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
			return restCountry{}, fmt.Errorf("country %q: %w", name, types.ErrNotFound)
		}
		return restCountry{}, err
	}
	if len(payload) == 0 {
		return restCountry{}, fmt.Errorf("country %q: %w", name, types.ErrNotFound)
	}
	return payload[0], nil
}

func (c *Client) getJSON(ctx context.Context, source, endpoint string, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUpstream(source, start, err) }()

	l := c.logger.With(slog.String("source", source), slog.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &types.UpstreamError{Source: source, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.WarnContext(ctx, "upstream request failed", slog.Any("error", err))
		return &types.UpstreamError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.WarnContext(ctx, "upstream returned non-success status", slog.Int("status", resp.StatusCode))
		return &types.UpstreamError{Source: source, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		l.WarnContext(ctx, "upstream body could not be decoded", slog.Any("error", err))
		return &types.UpstreamError{Source: source, Err: fmt.Errorf("decode body: %w", err)}
	}

	l.DebugContext(ctx, "upstream request completed", slog.Duration("elapsed", time.Since(start)))
	return nil
}
