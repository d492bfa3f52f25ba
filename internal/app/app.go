// Package app assembles the store, geocoder, provider, and service from configuration.
// It is shared by the commands under cmd/.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/geocode"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather"
	"github.com/i474232898/weather-insight/internal/weather/providers"
)

var (
	errMissingOpenWeatherKey = errors.New("OPENWEATHER_API_KEY is required for the openweather provider")
	errMissingGeocoderKey    = errors.New("GOOGLE_GEOCODER_API_KEY is required for the openmeteo provider")
)

// NewStore returns the record store selected by STORE_BACKEND.
func NewStore(cfg *config.AppConfig) weather.Store {
	if cfg.StoreBackend == config.BackendMemory {
		return store.NewMemoryStore()
	}
	return store.NewCSVStore(cfg.DataFile)
}

// NewGeocoder returns the Google geocoder wrapped in bounded retries and a cache,
// or nil when no geocoder key is configured.
func NewGeocoder(cfg *config.AppConfig, logger *slog.Logger, metrics *observability.Metrics) geocode.Geocoder {
	if cfg.GeocoderAPIKey == "" {
		return nil
	}
	var g geocode.Geocoder = geocode.NewGoogle(cfg.GeocoderAPIKey)
	g = geocode.NewRetrying(g, geocode.RetryConfig{
		MaxRetries:      cfg.GeocodeMaxRetries,
		InitialInterval: cfg.GeocodeBackoff,
		MaxInterval:     10 * cfg.GeocodeBackoff,
	}, logger, metrics)
	if cfg.GeocodeCacheSize > 0 {
		g = geocode.NewCached(g, cfg.GeocodeCacheSize, metrics)
	}
	return g
}

// NewProvider returns the weather provider selected by WEATHER_PROVIDER.
func NewProvider(cfg *config.AppConfig, geocoder geocode.Geocoder) (weather.Provider, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	backoff := providers.DefaultBackoff
	backoff.MaxRetries = cfg.FetchMaxRetries

	switch cfg.Provider {
	case config.ProviderOpenMeteo:
		if geocoder == nil {
			return nil, errMissingGeocoderKey
		}
		return providers.NewOpenMeteoProvider(client, geocoder, backoff), nil
	case config.ProviderOpenWeather:
		if cfg.OpenWeatherAPIKey == "" {
			return nil, errMissingOpenWeatherKey
		}
		return providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, backoff), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}

// Components is everything a command needs to record and read observations.
type Components struct {
	Store    weather.Store
	Geocoder geocode.Geocoder // nil without a geocoder key
	Service  *weather.Service
}

// Build wires the full recording pipeline.
func Build(cfg *config.AppConfig, logger *slog.Logger, metrics *observability.Metrics) (*Components, error) {
	st := NewStore(cfg)
	g := NewGeocoder(cfg, logger, metrics)
	p, err := NewProvider(cfg, g)
	if err != nil {
		return nil, err
	}
	return &Components{
		Store:    st,
		Geocoder: g,
		Service:  weather.NewService(st, p, logger, metrics),
	}, nil
}
