package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/geocode"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather/providers"
)

func baseConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Provider:          config.ProviderOpenWeather,
		OpenWeatherAPIKey: "key",
		StoreBackend:      config.BackendCSV,
		DataFile:          filepath.Join(t.TempDir(), "data.csv"),
		FetchMaxRetries:   1,
		GeocodeMaxRetries: 2,
		GeocodeCacheSize:  8,
	}
}

func TestNewStore(t *testing.T) {
	cfg := baseConfig(t)
	csv, ok := NewStore(cfg).(*store.CSVStore)
	require.True(t, ok)
	assert.Equal(t, cfg.DataFile, csv.Path())

	cfg.StoreBackend = config.BackendMemory
	assert.IsType(t, &store.MemoryStore{}, NewStore(cfg))
}

func TestNewGeocoder(t *testing.T) {
	cfg := baseConfig(t)
	metrics := observability.NewMetricsForTesting()
	assert.Nil(t, NewGeocoder(cfg, observability.DiscardLogger(), metrics))

	cfg.GeocoderAPIKey = "geo"
	assert.IsType(t, &geocode.Cached{}, NewGeocoder(cfg, observability.DiscardLogger(), metrics))

	cfg.GeocodeCacheSize = 0
	assert.IsType(t, &geocode.Retrying{}, NewGeocoder(cfg, observability.DiscardLogger(), metrics))
}

func TestNewProvider(t *testing.T) {
	cfg := baseConfig(t)
	p, err := NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &providers.OpenWeatherProvider{}, p)

	cfg.OpenWeatherAPIKey = ""
	_, err = NewProvider(cfg, nil)
	assert.ErrorIs(t, err, errMissingOpenWeatherKey)

	cfg.Provider = config.ProviderOpenMeteo
	_, err = NewProvider(cfg, nil)
	assert.ErrorIs(t, err, errMissingGeocoderKey)

	p, err = NewProvider(cfg, geocode.NewGoogle("geo"))
	require.NoError(t, err)
	assert.IsType(t, &providers.OpenMeteoProvider{}, p)
}

func TestBuild(t *testing.T) {
	c, err := Build(baseConfig(t), observability.DiscardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	assert.NotNil(t, c.Service)
	assert.Nil(t, c.Geocoder)
}
