package geocode

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-insight/internal/weather"
)

// the geocoder package keeps its API key in a package variable.
var apiKeyMu sync.Mutex

// Google geocodes through the Google Maps Geocoding API.
type Google struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogle returns a Google geocoder using apiKey.
func NewGoogle(apiKey string) *Google {
	return &Google{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

// Geocode resolves "city, state, country" to coordinates. The underlying client is not
// context aware; a cancelled ctx is only honoured before the request starts.
func (g *Google) Geocode(ctx context.Context, loc weather.Location) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if g.apiKey == "" {
		return Coordinates{}, fmt.Errorf("google geocoder api key is not configured")
	}

	address := geocoder.Address{
		City:    loc.City,
		State:   loc.State,
		Country: loc.CountryOrDefault(),
	}

	apiKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	result, err := g.lookup(address)
	apiKeyMu.Unlock()
	if err != nil {
		return Coordinates{}, fmt.Errorf("google geocode %s: %w", loc.Key(), err)
	}
	if result.Latitude == 0 && result.Longitude == 0 {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	return Coordinates{Lat: result.Latitude, Lon: result.Longitude}, nil
}
