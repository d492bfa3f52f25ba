package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insight/internal/geocode"
	"github.com/i474232898/weather-insight/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo needs coordinates, so locations are resolved through a geocoder first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder geocode.Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geocoder geocode.Geocoder, backoff BackoffConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit:  newCircuitBreaker("openmeteo"),
		geocoder: geocoder,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.geocoder == nil {
		return weather.Reading{}, fmt.Errorf("openmeteo requires a geocoder")
	}

	coords, err := p.geocoder.Geocode(ctx, loc)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			return weather.Reading{}, fmt.Errorf("%w: %v", weather.ErrLocationNotFound, err)
		}
		return weather.Reading{}, fmt.Errorf("resolve coordinates: %w", err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Time             string  `json:"time"`
			Temperature      float64 `json:"temperature_2m"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			WeatherCode      int     `json:"weather_code"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("decode openmeteo response: %w", err)
	}
	if payload.Current == nil {
		return weather.Reading{}, fmt.Errorf("openmeteo response for %s has no current block", loc)
	}

	// Open-Meteo reports ISO-8601 local times without seconds.
	ts, err := time.ParseInLocation("2006-01-02T15:04", payload.Current.Time, time.UTC)
	if err != nil {
		ts = time.Now().UTC()
	}

	reading := weather.Reading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.RelativeHumidity,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
	}
	if err := reading.Validate(); err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo %s: %w", loc, err)
	}
	return reading, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case code >= 71 && code <= 77:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
