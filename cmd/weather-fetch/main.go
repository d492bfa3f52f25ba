// Command weather-fetch records the current weather for one configured city, or all of them.
//
// Usage:
//
//	go run ./cmd/weather-fetch -city "San Francisco"
//	go run ./cmd/weather-fetch -all
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/i474232898/weather-insight/internal/app"
	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

func main() {
	city := flag.String("city", "", "configured city to fetch (default: the first configured city)")
	all := flag.Bool("all", false, "fetch every configured city")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, *city, *all); err != nil {
		fmt.Fprintln(os.Stderr, "weather-fetch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, city string, all bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	components, err := app.Build(cfg, log, observability.NewMetrics())
	if err != nil {
		return err
	}

	targets, err := selectLocations(cfg.Locations, city, all)
	if err != nil {
		return err
	}

	var failed error
	for _, loc := range targets {
		res, err := components.Service.Record(ctx, loc)
		if err != nil {
			failed = errors.Join(failed, err)
			continue
		}
		if !res.Stored {
			fmt.Fprintf(out, "Weather data for %s could not be saved\n", loc)
			continue
		}
		fmt.Fprintf(out, "Weather data for %s saved to %s (%s): %.1f°C, %.0f%% humidity\n",
			loc, destination(cfg), res.Upsert, res.Observation.TemperatureC, res.Observation.HumidityPct)
	}
	return failed
}

func selectLocations(locations []weather.Location, city string, all bool) ([]weather.Location, error) {
	if all {
		return locations, nil
	}
	if city == "" {
		return locations[:1], nil
	}
	for _, loc := range locations {
		if strings.EqualFold(loc.City, city) {
			return []weather.Location{loc}, nil
		}
	}
	names := make([]string, len(locations))
	for i, loc := range locations {
		names[i] = loc.City
	}
	return nil, fmt.Errorf("city %q is not configured; choose one of: %s", city, strings.Join(names, ", "))
}

func destination(cfg *config.AppConfig) string {
	if cfg.StoreBackend == config.BackendMemory {
		return "memory"
	}
	return cfg.DataFile
}
