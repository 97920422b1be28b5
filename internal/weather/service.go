// Package weather orchestrates fetch-then-normalize for the upstream weather
// endpoints and records per-endpoint observability.
package weather

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-gateway/internal/adapter/weatherapi"
	"github.com/couchcryptid/weather-gateway/internal/domain"
	"github.com/couchcryptid/weather-gateway/internal/normalize"
	"github.com/couchcryptid/weather-gateway/internal/observability"
)

// Fetcher retrieves the raw upstream document for a schema.
type Fetcher interface {
	Fetch(ctx context.Context, schema normalize.Schema, q weatherapi.Query) (map[string]any, error)
}

// Service exposes one typed accessor per upstream weather endpoint. Each call
// fetches the raw document, normalizes it, and records the outcome.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service with the given fetcher and observability.
func NewService(f Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher: f,
		logger:  logger,
		metrics: metrics,
	}
}

// TwoHourForecast returns the latest two-hour area forecasts.
func (s *Service) TwoHourForecast(ctx context.Context, q weatherapi.Query) (domain.WeatherResponse, error) {
	return fetchNormalized[domain.WeatherResponse](ctx, s, normalize.TwoHourForecast, q)
}

// TwentyFourHourForecast returns the latest 24-hour forecast.
func (s *Service) TwentyFourHourForecast(ctx context.Context, q weatherapi.Query) (domain.TwentyFourHourForecastResponse, error) {
	return fetchNormalized[domain.TwentyFourHourForecastResponse](ctx, s, normalize.TwentyFourHourForecast, q)
}

// FourDayForecast returns the four-day outlook.
func (s *Service) FourDayForecast(ctx context.Context, q weatherapi.Query) (domain.FourDayForecastResponse, error) {
	return fetchNormalized[domain.FourDayForecastResponse](ctx, s, normalize.FourDayForecast, q)
}

// AirTemperature returns per-station air temperature readings.
func (s *Service) AirTemperature(ctx context.Context, q weatherapi.Query) (domain.AirTemperatureResponse, error) {
	return fetchNormalized[domain.AirTemperatureResponse](ctx, s, normalize.AirTemperature, q)
}

// WindDirection returns per-station wind direction readings.
func (s *Service) WindDirection(ctx context.Context, q weatherapi.Query) (domain.WindDirectionResponse, error) {
	return fetchNormalized[domain.WindDirectionResponse](ctx, s, normalize.WindDirection, q)
}

// Lightning returns lightning observation records.
func (s *Service) Lightning(ctx context.Context, q weatherapi.Query) (domain.LightningResponse, error) {
	return fetchNormalized[domain.LightningResponse](ctx, s, normalize.Lightning, q)
}

// WBGT returns wet-bulb globe temperature records.
func (s *Service) WBGT(ctx context.Context, q weatherapi.Query) (domain.WBGTResponse, error) {
	return fetchNormalized[domain.WBGTResponse](ctx, s, normalize.WBGT, q)
}

// fetchNormalized runs one fetch-normalize cycle for the given schema. It is
// a package function because methods cannot carry type parameters.
func fetchNormalized[T any](ctx context.Context, s *Service, schema normalize.Schema, q weatherapi.Query) (T, error) {
	var zero T
	endpoint := string(schema)

	start := time.Now()
	doc, err := s.fetcher.Fetch(ctx, schema, q)
	s.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "transport_error"
		var ue *domain.UpstreamError
		var oe *domain.OpaqueUpstreamError
		if errors.As(err, &ue) || errors.As(err, &oe) {
			outcome = "upstream_error"
		}
		s.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		s.logger.Warn("upstream fetch failed", "endpoint", endpoint, "error", err)
		return zero, err
	}

	v, repairs, err := normalize.Normalize[T](schema, doc)
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues(endpoint, "normalize_error").Inc()
		s.metrics.NormalizeFailures.WithLabelValues(endpoint).Inc()
		s.logger.Error("normalization failed", "endpoint", endpoint, "error", err)
		return zero, err
	}

	for _, rule := range repairs {
		s.metrics.RepairsFired.WithLabelValues(endpoint, rule).Inc()
		s.logger.Warn("upstream document repaired", "endpoint", endpoint, "rule", rule)
	}

	s.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	return v, nil
}
