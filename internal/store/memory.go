package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-insight/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")

	// ErrIO is returned when the backing table cannot be read or written.
	ErrIO = errors.New("weather table i/o failed")
)

// MemoryStore is a concurrency-safe in-memory implementation of the record store.
// It applies the same rolling-window rule as CSVStore.
type MemoryStore struct {
	mu           sync.RWMutex
	observations []weather.Observation
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Upsert replaces the first fresh observation for the same location or appends obs.
func (s *MemoryStore) Upsert(obs weather.Observation) (weather.UpsertResult, error) {
	obs = weather.Normalize(obs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.observations) == 0 {
		s.observations = append(s.observations, obs)
		return weather.UpsertCreated, nil
	}

	for i := range s.observations {
		if weather.Supersedes(s.observations[i], obs) {
			s.observations[i] = obs
			return weather.UpsertReplaced, nil
		}
	}
	s.observations = append(s.observations, obs)
	return weather.UpsertAppended, nil
}

// All returns a copy of every observation in insertion order.
func (s *MemoryStore) All() ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Observation, len(s.observations))
	copy(out, s.observations)
	return out, nil
}

// GetLatest returns the most recent observation for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return latest(s.observations, loc)
}

// GetRange returns all observations for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return inRange(s.observations, loc, from, to)
}

func latest(observations []weather.Observation, loc weather.Location) (weather.Observation, error) {
	var (
		best  weather.Observation
		found bool
	)
	for _, obs := range observations {
		if !obs.SameLocation(loc) {
			continue
		}
		if !found || !obs.CollectedAt.Before(best.CollectedAt) {
			best = obs
			found = true
		}
	}
	if !found {
		return weather.Observation{}, ErrNotFound
	}
	return best, nil
}

func inRange(observations []weather.Observation, loc weather.Location, from, to time.Time) ([]weather.Observation, error) {
	var result []weather.Observation
	for _, obs := range observations {
		if !obs.SameLocation(loc) {
			continue
		}
		if (obs.CollectedAt.Equal(from) || obs.CollectedAt.After(from)) &&
			(obs.CollectedAt.Equal(to) || obs.CollectedAt.Before(to)) {
			result = append(result, obs)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
