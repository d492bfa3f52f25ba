// Package report summarizes recorded observations: per-location statistics,
// extremes, and a heat-coloured map page of the latest readings.
package report

import (
	"errors"

	"github.com/i474232898/weather-insight/internal/weather"
)

// ErrNoData is returned when there are no observations to analyze.
var ErrNoData = errors.New("no observations recorded")

// Role marks a location that holds one of the extremes among the latest readings.
type Role string

const (
	RoleNone       Role = ""
	RoleHottest    Role = "hottest"
	RoleColdest    Role = "coldest"
	RoleMostHumid  Role = "most-humid"
	RoleLeastHumid Role = "least-humid"
)

// LocationSummary aggregates every observation of one (city, state) pair.
type LocationSummary struct {
	Location weather.Location
	Count    int
	Latest   weather.Observation
	// Roles this location's latest reading holds; empty for most locations.
	TemperatureRole Role
	HumidityRole    Role
}

// Extremes are the observations holding the record values across all rows.
type Extremes struct {
	Hottest    weather.Observation
	Coldest    weather.Observation
	MostHumid  weather.Observation
	LeastHumid weather.Observation
}

// Analysis is the full result over a set of observations.
type Analysis struct {
	Total     int
	Locations []LocationSummary // in order of first appearance
	Extremes  Extremes
}

// Analyze computes summaries over observations in table order.
// Extremes are taken over all rows; ties keep the earliest row.
// Roles are assigned to the locations whose row is the overall extreme.
func Analyze(observations []weather.Observation) (Analysis, error) {
	if len(observations) == 0 {
		return Analysis{}, ErrNoData
	}

	a := Analysis{Total: len(observations)}
	index := make(map[string]int)
	ex := Extremes{
		Hottest:    observations[0],
		Coldest:    observations[0],
		MostHumid:  observations[0],
		LeastHumid: observations[0],
	}

	for _, obs := range observations {
		key := obs.Location().Key()
		i, ok := index[key]
		if !ok {
			i = len(a.Locations)
			index[key] = i
			a.Locations = append(a.Locations, LocationSummary{Location: obs.Location(), Latest: obs})
		}
		s := &a.Locations[i]
		s.Count++
		if !obs.CollectedAt.Before(s.Latest.CollectedAt) {
			s.Latest = obs
		}

		if obs.TemperatureC > ex.Hottest.TemperatureC {
			ex.Hottest = obs
		}
		if obs.TemperatureC < ex.Coldest.TemperatureC {
			ex.Coldest = obs
		}
		if obs.HumidityPct > ex.MostHumid.HumidityPct {
			ex.MostHumid = obs
		}
		if obs.HumidityPct < ex.LeastHumid.HumidityPct {
			ex.LeastHumid = obs
		}
	}
	a.Extremes = ex

	for i := range a.Locations {
		s := &a.Locations[i]
		switch {
		case ex.Hottest.SameLocation(s.Location):
			s.TemperatureRole = RoleHottest
		case ex.Coldest.SameLocation(s.Location):
			s.TemperatureRole = RoleColdest
		}
		switch {
		case ex.MostHumid.SameLocation(s.Location):
			s.HumidityRole = RoleMostHumid
		case ex.LeastHumid.SameLocation(s.Location):
			s.HumidityRole = RoleLeastHumid
		}
	}

	return a, nil
}
