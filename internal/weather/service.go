package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-insight/internal/observability"
)

// Result is what a single Record call produced.
type Result struct {
	Location    Location    `json:"location"`
	Reading     Reading     `json:"reading"`
	Observation Observation `json:"observation"`
	// Stored is false when the store failed and the observation was dropped.
	Stored bool         `json:"stored"`
	Upsert UpsertResult `json:"-"`
}

// Service orchestrates fetching from a provider and persisting observations.
type Service struct {
	store    Store
	provider Provider
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithClock swaps the time source used to stamp observations.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record fetches the current weather for loc and upserts it into the store.
// Provider failures are returned. Store failures are logged and swallowed:
// the returned Result has Stored == false and the error is nil.
func (s *Service) Record(ctx context.Context, loc Location) (Result, error) {
	if s.provider == nil {
		return Result{}, fmt.Errorf("no weather provider configured")
	}
	if loc.City == "" || loc.State == "" {
		return Result{}, fmt.Errorf("city and state are required")
	}

	name := s.provider.Name()
	start := time.Now()
	reading, err := s.provider.Fetch(ctx, loc)
	s.metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrLocationNotFound) {
			outcome = "not_found"
		}
		s.metrics.FetchRequests.WithLabelValues(name, outcome).Inc()
		return Result{}, fmt.Errorf("fetch %s from %s: %w", loc.Key(), name, err)
	}
	s.metrics.FetchRequests.WithLabelValues(name, "success").Inc()

	obs := Normalize(Observation{
		CollectedAt:  s.clock.Now(),
		City:         loc.City,
		State:        loc.State,
		TemperatureC: reading.TemperatureC,
		HumidityPct:  reading.HumidityPct,
	})

	res := Result{Location: loc, Reading: reading, Observation: obs}

	upsert, err := s.store.Upsert(obs)
	if err != nil {
		s.metrics.StoreErrors.Inc()
		s.logger.Error("failed to record observation; dropping it",
			"location", loc.Key(), observability.Err(err))
		return res, nil
	}
	s.metrics.Upserts.WithLabelValues(upsert.String()).Inc()
	s.logger.Debug("observation recorded",
		"location", loc.Key(), "result", upsert.String(), "temperature_c", obs.TemperatureC)

	res.Stored = true
	res.Upsert = upsert
	return res, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Observation, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Observation, error) {
	return s.store.GetRange(loc, from, to)
}

// Observations returns every recorded observation in table order.
func (s *Service) Observations() ([]Observation, error) {
	return s.store.All()
}
