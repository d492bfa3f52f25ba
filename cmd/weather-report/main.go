// Command weather-report prints statistics over the recorded weather table and
// writes the heat-coloured map page of the latest reading per city.
//
// Usage:
//
//	go run ./cmd/weather-report -units imperial -map weather_map.html
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/weather-insight/internal/app"
	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/report"
	"github.com/i474232898/weather-insight/internal/weather"
)

func main() {
	units := flag.String("units", string(weather.Metric), "display units: metric or imperial")
	mapFile := flag.String("map", "", "map page to write (default: MAP_FILE)")
	noMap := flag.Bool("no-map", false, "skip writing the map page")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, *units, *mapFile, *noMap); err != nil {
		fmt.Fprintln(os.Stderr, "weather-report:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, unitsFlag, mapFile string, noMap bool) error {
	units, err := weather.ParseUnits(unitsFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	observations, err := app.NewStore(cfg).All()
	if err != nil {
		return err
	}
	analysis, err := report.Analyze(observations)
	if err != nil {
		return err
	}
	if err := report.WriteText(out, analysis, units); err != nil {
		return err
	}
	if noMap {
		return nil
	}

	if mapFile == "" {
		mapFile = cfg.MapFile
	}
	err = report.WriteMapFile(ctx, mapFile, analysis, report.MapOptions{
		Units:    units,
		Geocoder: app.NewGeocoder(cfg, log, metrics),
		Logger:   log,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nMap written to %s\n", mapFile)
	return nil
}
