package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/observability"
)

type stubProvider struct {
	reading Reading
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Fetch(_ context.Context, _ Location) (Reading, error) {
	p.calls++
	return p.reading, p.err
}

// sliceStore is a minimal Store used to observe what the service writes.
type sliceStore struct {
	upserts []Observation
	err     error
}

func (s *sliceStore) Upsert(obs Observation) (UpsertResult, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.upserts = append(s.upserts, obs)
	if len(s.upserts) == 1 {
		return UpsertCreated, nil
	}
	return UpsertAppended, nil
}

func (s *sliceStore) All() ([]Observation, error) { return s.upserts, nil }

func (s *sliceStore) GetLatest(Location) (Observation, error) {
	return Observation{}, errors.New("not implemented")
}

func (s *sliceStore) GetRange(Location, time.Time, time.Time) ([]Observation, error) {
	return nil, errors.New("not implemented")
}

func newTestService(store Store, provider Provider, clock clockwork.Clock) *Service {
	return NewService(store, provider, observability.DiscardLogger(), observability.NewMetricsForTesting(), WithClock(clock))
}

func TestService_RecordStampsObservation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 20, 0, 0, 123, time.UTC))
	store := &sliceStore{}
	provider := &stubProvider{reading: Reading{ProviderName: "stub", TemperatureC: 22.5, HumidityPct: 35}}
	svc := newTestService(store, provider, clock)

	res, err := svc.Record(context.Background(), Location{City: "Austin", State: "TX"})
	require.NoError(t, err)

	want := Observation{
		CollectedAt:  time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC),
		City:         "Austin",
		State:        "TX",
		TemperatureC: 22.5,
		HumidityPct:  35,
	}
	assert.True(t, res.Stored)
	assert.Equal(t, UpsertCreated, res.Upsert)
	assert.Equal(t, want, res.Observation)
	assert.Equal(t, []Observation{want}, store.upserts)
}

func TestService_RecordProviderErrorIsReturned(t *testing.T) {
	store := &sliceStore{}
	provider := &stubProvider{err: ErrLocationNotFound}
	svc := newTestService(store, provider, clockwork.NewFakeClock())

	_, err := svc.Record(context.Background(), Location{City: "Nowhere", State: "ZZ"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Empty(t, store.upserts)
}

func TestService_RecordSwallowsStoreErrors(t *testing.T) {
	store := &sliceStore{err: errors.New("disk full")}
	provider := &stubProvider{reading: Reading{TemperatureC: 10, HumidityPct: 50}}
	svc := newTestService(store, provider, clockwork.NewFakeClock())

	res, err := svc.Record(context.Background(), Location{City: "Austin", State: "TX"})
	require.NoError(t, err)
	assert.False(t, res.Stored)
	assert.InDelta(t, 10.0, res.Reading.TemperatureC, 1e-9)
}

func TestService_RecordRequiresCityAndState(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(&sliceStore{}, provider, clockwork.NewFakeClock())

	_, err := svc.Record(context.Background(), Location{City: "Austin"})
	require.Error(t, err)
	assert.Zero(t, provider.calls)
}
