package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidReading is returned when a provider answers with values outside their physical range.
var ErrInvalidReading = errors.New("invalid weather reading")

// Reading represents a single provider's normalized current-weather answer.
type Reading struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`

	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPercent"`
	Condition    Condition `json:"condition"`
}

// Validate checks that humidity is a percentage in [0,100] and temperature is finite.
func (r Reading) Validate() error {
	if math.IsNaN(r.HumidityPct) || r.HumidityPct < 0 || r.HumidityPct > 100 {
		return fmt.Errorf("%w: humidity %v%% outside [0,100]", ErrInvalidReading, r.HumidityPct)
	}
	if math.IsNaN(r.TemperatureC) || math.IsInf(r.TemperatureC, 0) {
		return fmt.Errorf("%w: temperature %v", ErrInvalidReading, r.TemperatureC)
	}
	return nil
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// Store is the contract every weather record store (CSV table, in-memory) must satisfy.
type Store interface {
	Upsert(obs Observation) (UpsertResult, error)
	All() ([]Observation, error)
	GetLatest(loc Location) (Observation, error)
	GetRange(loc Location, from, to time.Time) ([]Observation, error)
}
