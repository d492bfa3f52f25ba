// Package geocode resolves weather locations to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/weather-insight/internal/weather"
)

var (
	// ErrNotFound is returned when the geocoding service has no match for a location.
	// It is never retried.
	ErrNotFound = errors.New("location could not be geocoded")

	// ErrRetriesExhausted wraps the last failure once the retry budget is spent.
	ErrRetriesExhausted = errors.New("geocoding retries exhausted")
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Geocoder converts a location into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (Coordinates, error)
}
