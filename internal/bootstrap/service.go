// Package bootstrap builds the weather service from configuration. It is shared
// by the HTTP server and the CLI so both talk to the same upstream stack.
package bootstrap

import (
	"log/slog"

	"github.com/i474232898/weather-insights/internal/config"
	"github.com/i474232898/weather-insights/internal/observability"
	"github.com/i474232898/weather-insights/internal/weather"
	"github.com/i474232898/weather-insights/internal/weather/providers"
)

// NewService wires the upstream clients into a weather.Service. When a Google
// API key is configured it is chained behind Open-Meteo geocoding.
func NewService(cfg *config.AppConfig, logger *slog.Logger, metrics *observability.Metrics) *weather.Service {
	var geocoder weather.Geocoder = providers.NewOpenMeteoGeocoder(providers.ClientOptions{
		BaseURL:    cfg.GeocodingURL,
		Timeout:    cfg.GeocodingTimeout,
		MaxRetries: cfg.UpstreamMaxRetries,
		Metrics:    metrics,
	})
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewChainGeocoder(geocoder, providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey, cfg.GeocodingTimeout, metrics))
		logger.Info("google geocoder fallback enabled")
	}

	forecast := providers.NewOpenMeteoForecast(providers.ClientOptions{
		BaseURL:    cfg.ForecastURL,
		Timeout:    cfg.ForecastTimeout,
		MaxRetries: cfg.UpstreamMaxRetries,
		Metrics:    metrics,
	})

	// Historical windows are never retried; a failed window is dropped.
	archive := providers.NewNASAPowerArchive(providers.ClientOptions{
		BaseURL: cfg.ArchiveURL,
		Timeout: cfg.ArchiveTimeout,
		Metrics: metrics,
	})

	return weather.NewService(geocoder, forecast, archive, weather.Options{
		HistoryYears:         cfg.HistoryYears,
		InsightYears:         cfg.InsightYears,
		WindowDays:           cfg.HistoryWindowDays,
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		ArchiveTimeout:       cfg.ArchiveTimeout,
		Logger:               logger,
		Metrics:              metrics,
	})
}
