package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-insight/internal/weather"
)

// DefaultLocations is the fixed city list fetched when none is configured.
var DefaultLocations = []weather.Location{
	{City: "San Francisco", State: "CA"},
	{City: "Los Angeles", State: "CA"},
	{City: "New York", State: "NY"},
}

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"

	BackendCSV    = "csv"
	BackendMemory = "memory"
)

type AppConfig struct {
	// API keys are checked when the provider is built.
	OpenWeatherAPIKey string
	GeocoderAPIKey    string
	Provider          string `validate:"oneof=openweather openmeteo"`

	// Locations tracked by the scheduler and offered by weather-fetch.
	Locations []weather.Location `validate:"min=1,dive"`

	FetchInterval   time.Duration `validate:"gte=1m"`
	FetchMaxRetries int           `validate:"gte=0,lte=10"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	StoreBackend string `validate:"oneof=csv memory"`
	DataFile     string `validate:"required_if=StoreBackend csv"`
	MapFile      string `validate:"required"`

	GeocodeMaxRetries int           `validate:"gte=0,lte=10"`
	GeocodeBackoff    time.Duration `validate:"gt=0"`
	GeocodeCacheSize  int           `validate:"gte=0"`

	Port            string        `validate:"required,numeric"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	LogFormat       string        `validate:"oneof=text json"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// Load reads configuration from the environment (and .env, when present) with defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Info("no usable .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds and validates the configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GOOGLE_GEOCODER_API_KEY"),
		Provider:          strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather)),
		FetchMaxRetries:   getenvInt("FETCH_MAX_RETRIES", 2),
		StoreBackend:      strings.ToLower(getenvDefault("STORE_BACKEND", BackendCSV)),
		DataFile:          getenvDefault("DATA_FILE", "weather_data.csv"),
		MapFile:           getenvDefault("MAP_FILE", "weather_map.html"),
		GeocodeMaxRetries: getenvInt("GEOCODE_MAX_RETRIES", 3),
		GeocodeCacheSize:  getenvInt("GEOCODE_CACHE_SIZE", 256),
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenvDefault("LOG_FORMAT", "text")),
	}

	var err error
	durations := []struct {
		key, def string
		dst      *time.Duration
	}{
		{"FETCH_INTERVAL", "15m", &cfg.FetchInterval},
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"GEOCODE_BACKOFF", "500ms", &cfg.GeocodeBackoff},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.Locations, err = loadLocations(getenvDefault("WEATHER_COUNTRY", weather.DefaultCountry))
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadLocations pairs WEATHER_LOCATION_CITY with WEATHER_LOCATION_STATE.
// Both unset selects DefaultLocations.
func loadLocations(country string) ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	state := os.Getenv("WEATHER_LOCATION_STATE")
	if city == "" && state == "" {
		locs := make([]weather.Location, len(DefaultLocations))
		for i, l := range DefaultLocations {
			l.Country = country
			locs[i] = l
		}
		return locs, nil
	}

	cities := strings.Split(city, ",")
	states := strings.Split(state, ",")
	if len(cities) != len(states) {
		return nil, fmt.Errorf("number of cities (%d) and states (%d) must be the same", len(cities), len(states))
	}

	locs := make([]weather.Location, 0, len(cities))
	for i := range cities {
		loc := weather.Location{
			City:    strings.TrimSpace(cities[i]),
			State:   strings.TrimSpace(states[i]),
			Country: country,
		}
		if loc.City == "" || loc.State == "" {
			return nil, fmt.Errorf("location %d: city and state must not be empty", i+1)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
