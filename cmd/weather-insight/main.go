package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-insight/internal/api/http"
	"github.com/i474232898/weather-insight/internal/app"
	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/report"
	"github.com/i474232898/weather-insight/internal/scheduler"
	"github.com/i474232898/weather-insight/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", observability.Err(err))
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	metrics := observability.NewMetrics()

	components, err := app.Build(cfg, log, metrics)
	if err != nil {
		log.Error("failed to build weather pipeline", observability.Err(err))
		os.Exit(1)
	}
	service := components.Service

	// Scheduler records the configured cities and refreshes the map page after each round.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service, log)
	sched.OnComplete(func(ctx context.Context, _ scheduler.Summary) {
		refreshMap(ctx, cfg, service, components, log)
	})
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", observability.Err(err))
		os.Exit(1)
	}
	defer sched.Stop()

	server := fiber.New(fiber.Config{
		AppName:               "weather-insight",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	server.Use(logger.New())
	server.Use(recover.New())

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-insight",
		})
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(server, service, httpapi.Options{MapFile: cfg.MapFile, Logger: log})

	go func() {
		log.Info("http server listening", "port", cfg.Port, "provider", cfg.Provider, "store", cfg.StoreBackend)
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", observability.Err(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", observability.Err(err))
	}
}

func refreshMap(ctx context.Context, cfg *config.AppConfig, service *weather.Service, c *app.Components, log *slog.Logger) {
	observations, err := service.Observations()
	if err != nil {
		log.Warn("map not refreshed", observability.Err(err))
		return
	}
	analysis, err := report.Analyze(observations)
	if err != nil {
		log.Debug("map not refreshed", observability.Err(err))
		return
	}
	err = report.WriteMapFile(ctx, cfg.MapFile, analysis, report.MapOptions{
		Units:    weather.Metric,
		Geocoder: c.Geocoder,
		Logger:   log,
	})
	if err != nil {
		log.Warn("map not refreshed", observability.Err(err))
	}
}
