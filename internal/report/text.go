package report

import (
	"fmt"
	"io"

	"github.com/i474232898/weather-insight/internal/weather"
)

// WriteText prints the analysis in the given display units.
func WriteText(w io.Writer, a Analysis, units weather.Units) error {
	sym := units.Symbol()
	p := &printer{w: w}

	p.printf("=== Analysis of Searched Cities ===\n")
	p.printf("\nNumber of unique cities searched: %d\n", len(a.Locations))
	p.printf("\nCities that have been searched:\n")
	for _, s := range a.Locations {
		p.printf("- %s\n", s.Location)
	}

	p.printf("\nDetailed Statistics for Each Searched City:\n")
	for _, s := range a.Locations {
		p.printf("\n%s:\n", s.Location)
		p.printf("Number of times searched: %d\n", s.Count)
		p.printf("Latest temperature: %.1f%s\n", units.FromCelsius(s.Latest.TemperatureC), sym)
		p.printf("Latest humidity: %.1f%%\n", s.Latest.HumidityPct)
	}

	p.printf("\n=== Extreme Weather Conditions ===\n")
	p.extreme("Hottest temperature recorded", a.Extremes.Hottest, units)
	p.extreme("Coldest temperature recorded", a.Extremes.Coldest, units)
	p.humidity("Most humid reading recorded", a.Extremes.MostHumid)
	p.humidity("Least humid reading recorded", a.Extremes.LeastHumid)

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) extreme(title string, obs weather.Observation, units weather.Units) {
	p.printf("\n%s: %.1f%s\n", title, units.FromCelsius(obs.TemperatureC), units.Symbol())
	p.printf("City: %s\n", obs.Location())
	p.printf("Time: %s\n", obs.CollectedAt.Format(weather.TimestampLayout))
}

func (p *printer) humidity(title string, obs weather.Observation) {
	p.printf("\n%s: %.1f%%\n", title, obs.HumidityPct)
	p.printf("City: %s\n", obs.Location())
	p.printf("Time: %s\n", obs.CollectedAt.Format(weather.TimestampLayout))
}
