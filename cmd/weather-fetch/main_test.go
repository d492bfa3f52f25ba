package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/config"
)

func TestSelectLocations(t *testing.T) {
	locs := config.DefaultLocations

	got, err := selectLocations(locs, "", false)
	require.NoError(t, err)
	assert.Equal(t, locs[:1], got)

	got, err = selectLocations(locs, "new york", false)
	require.NoError(t, err)
	assert.Equal(t, "New York", got[0].City)

	got, err = selectLocations(locs, "ignored", true)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = selectLocations(locs, "Chicago", false)
	assert.ErrorContains(t, err, "San Francisco, Los Angeles, New York")
}
