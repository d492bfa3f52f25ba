package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/weather"
)

func TestMemoryStore_RollingWindow(t *testing.T) {
	s := NewMemoryStore()

	res, err := s.Upsert(obs(t, "2024-01-01 08:00:00", "Austin", "TX", 15.0, 40))
	require.NoError(t, err)
	assert.Equal(t, weather.UpsertCreated, res)

	res, err = s.Upsert(obs(t, "2024-01-01 20:00:00", "Austin", "TX", 22.5, 35))
	require.NoError(t, err)
	assert.Equal(t, weather.UpsertReplaced, res)

	res, err = s.Upsert(obs(t, "2024-01-03 08:00:00", "Austin", "TX", 18, 45))
	require.NoError(t, err)
	assert.Equal(t, weather.UpsertAppended, res)

	res, err = s.Upsert(obs(t, "2024-01-03 08:00:00", "Dallas", "TX", 19, 45))
	require.NoError(t, err)
	assert.Equal(t, weather.UpsertAppended, res)

	all, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, []weather.Observation{
		obs(t, "2024-01-01 20:00:00", "Austin", "TX", 22.5, 35),
		obs(t, "2024-01-03 08:00:00", "Austin", "TX", 18, 45),
		obs(t, "2024-01-03 08:00:00", "Dallas", "TX", 19, 45),
	}, all)
}

func TestMemoryStore_GetRange(t *testing.T) {
	s := NewMemoryStore()
	loc := weather.Location{City: "Austin", State: "TX"}

	for _, at := range []string{"2024-01-01 08:00:00", "2024-01-03 08:00:00"} {
		_, err := s.Upsert(obs(t, at, "Austin", "TX", 20, 50))
		require.NoError(t, err)
	}

	got, err := s.GetRange(loc, ts(t, "2024-01-02 00:00:00"), ts(t, "2024-01-04 00:00:00"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ts(t, "2024-01-03 08:00:00"), got[0].CollectedAt)

	_, err = s.GetRange(loc, ts(t, "2025-01-01 00:00:00"), ts(t, "2025-01-02 00:00:00"))
	assert.ErrorIs(t, err, ErrNotFound)
}
