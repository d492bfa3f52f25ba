package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

var austin = weather.Location{City: "Austin", State: "TX"}

// --- mock geocoder ---

type mockGeocoder struct {
	results []error // error per call; nil means success
	coords  Coordinates
	calls   int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ weather.Location) (Coordinates, error) {
	i := m.calls
	m.calls++
	if i < len(m.results) && m.results[i] != nil {
		return Coordinates{}, m.results[i]
	}
	return m.coords, nil
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

// --- tests ---

func TestRetrying_SucceedsAfterTransientFailure(t *testing.T) {
	timeout := errors.New("i/o timeout")
	inner := &mockGeocoder{results: []error{timeout}, coords: Coordinates{Lat: 30.2672, Lon: -97.7431}}
	metrics := observability.NewMetricsForTesting()
	r := NewRetrying(inner, fastRetry(3), observability.DiscardLogger(), metrics)

	got, err := r.Geocode(context.Background(), austin)
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 30.2672, Lon: -97.7431}, got)
	assert.Equal(t, 2, inner.calls)
}

func TestRetrying_StopsAfterLimit(t *testing.T) {
	timeout := errors.New("i/o timeout")
	inner := &mockGeocoder{results: []error{timeout, timeout, timeout, timeout, timeout, timeout}}
	r := NewRetrying(inner, fastRetry(2), observability.DiscardLogger(), observability.NewMetricsForTesting())

	_, err := r.Geocode(context.Background(), austin)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, timeout)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrying_NotFoundIsPermanent(t *testing.T) {
	inner := &mockGeocoder{results: []error{ErrNotFound}}
	r := NewRetrying(inner, fastRetry(5), observability.DiscardLogger(), observability.NewMetricsForTesting())

	_, err := r.Geocode(context.Background(), austin)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_CancelledContext(t *testing.T) {
	inner := &mockGeocoder{results: []error{errors.New("boom"), errors.New("boom")}}
	r := NewRetrying(inner, RetryConfig{MaxRetries: 5, InitialInterval: time.Hour}, observability.DiscardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Geocode(ctx, austin)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCached_ReusesSuccessfulLookups(t *testing.T) {
	inner := &mockGeocoder{coords: Coordinates{Lat: 1, Lon: 2}}
	c := NewCached(inner, 10, observability.NewMetricsForTesting())

	for i := 0; i < 3; i++ {
		got, err := c.Geocode(context.Background(), austin)
		require.NoError(t, err)
		assert.Equal(t, Coordinates{Lat: 1, Lon: 2}, got)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	inner := &mockGeocoder{results: []error{ErrNotFound}, coords: Coordinates{Lat: 1, Lon: 2}}
	c := NewCached(inner, 10, observability.NewMetricsForTesting())

	_, err := c.Geocode(context.Background(), austin)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Geocode(context.Background(), austin)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCached_EvictsOldest(t *testing.T) {
	inner := &mockGeocoder{coords: Coordinates{Lat: 1, Lon: 2}}
	c := NewCached(inner, 1, observability.NewMetricsForTesting())
	dallas := weather.Location{City: "Dallas", State: "TX"}

	_, _ = c.Geocode(context.Background(), austin)
	_, _ = c.Geocode(context.Background(), dallas)
	_, _ = c.Geocode(context.Background(), austin)
	assert.Equal(t, 3, inner.calls)
}

func TestGoogle_Geocode(t *testing.T) {
	g := NewGoogle("test-key")
	var gotAddress geocoder.Address
	g.lookup = func(a geocoder.Address) (geocoder.Location, error) {
		gotAddress = a
		assert.Equal(t, "test-key", geocoder.ApiKey)
		return geocoder.Location{Latitude: 30.2672, Longitude: -97.7431}, nil
	}

	got, err := g.Geocode(context.Background(), austin)
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 30.2672, Lon: -97.7431}, got)
	assert.Equal(t, "Austin", gotAddress.City)
	assert.Equal(t, "TX", gotAddress.State)
	assert.Equal(t, "US", gotAddress.Country)
}

func TestGoogle_ZeroResultIsNotFound(t *testing.T) {
	g := NewGoogle("test-key")
	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, nil
	}

	_, err := g.Geocode(context.Background(), austin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGoogle_MissingKey(t *testing.T) {
	_, err := NewGoogle("").Geocode(context.Background(), austin)
	assert.Error(t, err)
}
