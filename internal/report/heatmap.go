package report

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/i474232898/weather-insight/internal/geocode"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

//go:embed map.html.tmpl
var mapTemplateText string

var mapTemplate = template.Must(template.New("map").Parse(mapTemplateText))

const (
	plotWidth   = 800.0
	plotHeight  = 400.0
	plotMargin  = 40.0
	chartHeight = 260.0
)

// Bar colours of the humidity chart.
const (
	colorMostHumid  = "green"
	colorLeastHumid = "orange"
	colorHumidity   = "gray"
)

// MapPoint is one location's latest reading as drawn on the map page.
type MapPoint struct {
	Location     weather.Location
	Temperature  float64 // in display units
	Humidity     float64
	Color        string
	Role         Role
	HumidityRole Role
	Coordinates  *geocode.Coordinates
	X, Y         float64 // plot position, only meaningful with Coordinates
}

// HumidityBar is one bar of the latest-humidity chart.
type HumidityBar struct {
	Label         string
	Humidity      float64
	Color         string
	X, Y          float64
	Width, Height float64
}

type mapPage struct {
	Symbol       string
	Points       []MapPoint
	Plot         bool
	Width        float64
	Height       float64
	ChartHeight  float64
	ChartBase    float64
	HumidityBars []HumidityBar
}

// MapOptions configures WriteMap. Geocoder is optional; without it the page only
// lists readings.
type MapOptions struct {
	Units    weather.Units
	Geocoder geocode.Geocoder
	Logger   *slog.Logger
}

// WriteMap renders the heat-coloured map page of every location's latest reading.
func WriteMap(ctx context.Context, w io.Writer, a Analysis, opts MapOptions) error {
	if opts.Logger == nil {
		opts.Logger = observability.DiscardLogger()
	}
	points := buildPoints(ctx, a, opts)
	page := mapPage{
		Symbol: opts.Units.Symbol(),
		Points: points,
		Width:  plotWidth,
		Height: plotHeight,
	}
	page.ChartHeight = chartHeight
	page.ChartBase = chartHeight - plotMargin
	page.HumidityBars = humidityBars(points)
	page.Plot = project(page.Points)

	if err := mapTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// WriteMapFile renders the map page to path, replacing it atomically.
func WriteMapFile(ctx context.Context, path string, a Analysis, opts MapOptions) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteMap(ctx, tmp, a, opts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close map file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace map file: %w", err)
	}
	return nil
}

func buildPoints(ctx context.Context, a Analysis, opts MapOptions) []MapPoint {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range a.Locations {
		lo = math.Min(lo, s.Latest.TemperatureC)
		hi = math.Max(hi, s.Latest.TemperatureC)
	}

	points := make([]MapPoint, 0, len(a.Locations))
	for _, s := range a.Locations {
		p := MapPoint{
			Location:    s.Location,
			Temperature: opts.Units.FromCelsius(s.Latest.TemperatureC),
			Humidity:    s.Latest.HumidityPct,
			Color:       HeatColor(s.Latest.TemperatureC, lo, hi),
			Role:        s.TemperatureRole,
		}
		p.HumidityRole = s.HumidityRole
		if opts.Geocoder != nil {
			coords, err := opts.Geocoder.Geocode(ctx, s.Location)
			if err != nil {
				opts.Logger.Warn("skipping map coordinates", "location", s.Location.Key(), observability.Err(err))
			} else {
				p.Coordinates = &coords
			}
		}
		points = append(points, p)
	}
	return points
}

// project places geocoded points on the plot using an equirectangular projection
// of their bounding box. It reports whether anything can be plotted.
func project(points []MapPoint) bool {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	n := 0
	for _, p := range points {
		if p.Coordinates == nil {
			continue
		}
		n++
		minLat, maxLat = math.Min(minLat, p.Coordinates.Lat), math.Max(maxLat, p.Coordinates.Lat)
		minLon, maxLon = math.Min(minLon, p.Coordinates.Lon), math.Max(maxLon, p.Coordinates.Lon)
	}
	if n == 0 {
		return false
	}

	spanLat := math.Max(maxLat-minLat, 1e-6)
	spanLon := math.Max(maxLon-minLon, 1e-6)
	for i := range points {
		c := points[i].Coordinates
		if c == nil {
			continue
		}
		points[i].X = plotMargin + (c.Lon-minLon)/spanLon*(plotWidth-2*plotMargin)
		points[i].Y = plotMargin + (maxLat-c.Lat)/spanLat*(plotHeight-2*plotMargin)
	}
	return true
}

// humidityBars lays out one bar per location, highlighting the most humid in
// green and the least humid in orange.
func humidityBars(points []MapPoint) []HumidityBar {
	if len(points) == 0 {
		return nil
	}
	slot := (plotWidth - 2*plotMargin) / float64(len(points))
	usable := chartHeight - 2*plotMargin

	bars := make([]HumidityBar, len(points))
	for i, p := range points {
		color := colorHumidity
		switch p.HumidityRole {
		case RoleMostHumid:
			color = colorMostHumid
		case RoleLeastHumid:
			color = colorLeastHumid
		}
		h := math.Max(0, math.Min(100, p.Humidity)) / 100 * usable
		bars[i] = HumidityBar{
			Label:    p.Location.String(),
			Humidity: p.Humidity,
			Color:    color,
			X:        plotMargin + float64(i)*slot + 0.15*slot,
			Y:        chartHeight - plotMargin - h,
			Width:    0.7 * slot,
			Height:   h,
		}
	}
	return bars
}

// HeatColor maps t within [lo, hi] onto a blue -> yellow -> red scale.
func HeatColor(t, lo, hi float64) string {
	frac := 0.5
	if hi > lo {
		frac = (t - lo) / (hi - lo)
	}
	frac = math.Max(0, math.Min(1, frac))

	type rgb struct{ r, g, b float64 }
	cold := rgb{44, 123, 182}
	mid := rgb{255, 255, 191}
	hot := rgb{215, 25, 28}

	from, to, f := cold, mid, frac*2
	if frac > 0.5 {
		from, to, f = mid, hot, (frac-0.5)*2
	}
	lerp := func(a, b float64) int { return int(math.Round(a + (b-a)*f)) }
	return fmt.Sprintf("#%02x%02x%02x", lerp(from.r, to.r), lerp(from.g, to.g), lerp(from.b, to.b))
}
