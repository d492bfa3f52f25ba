package weather

import (
	"errors"
	"time"
)

// ErrLocationNotFound is returned by providers when the upstream API does not know the location.
var ErrLocationNotFound = errors.New("location not found")

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// DefaultCountry is used when a location does not name a country.
const DefaultCountry = "US"

// Location represents a logical place for which we record weather.
// City and State must be provided and are compared exactly.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.State
}

// CountryOrDefault returns the location's country, falling back to DefaultCountry.
func (l Location) CountryOrDefault() string {
	if l.Country == "" {
		return DefaultCountry
	}
	return l.Country
}

// String formats the location the way it is shown to users, e.g. "Austin, TX".
func (l Location) String() string {
	return l.City + ", " + l.State
}

// Observation is one recorded weather reading for a location. Temperature is always °C.
type Observation struct {
	CollectedAt  time.Time `json:"collectedAt"` // UTC, second precision
	City         string    `json:"city"`
	State        string    `json:"state"`
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPercent"`
}

// Location returns the (city, state) pair the observation belongs to.
func (o Observation) Location() Location {
	return Location{City: o.City, State: o.State}
}

// SameLocation reports whether the observation is for the given location.
func (o Observation) SameLocation(loc Location) bool {
	return o.City == loc.City && o.State == loc.State
}
