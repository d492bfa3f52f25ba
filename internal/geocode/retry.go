package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

// RetryConfig bounds the retry loop around a geocoder.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Retrying retries transient geocoding failures with exponential backoff.
type Retrying struct {
	inner   Geocoder
	cfg     RetryConfig
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRetrying wraps inner with a bounded retry loop.
func NewRetrying(inner Geocoder, cfg RetryConfig, logger *slog.Logger, metrics *observability.Metrics) *Retrying {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = 10 * cfg.InitialInterval
	}
	return &Retrying{inner: inner, cfg: cfg, logger: logger, metrics: metrics}
}

// Geocode calls the wrapped geocoder at most MaxRetries+1 times. ErrNotFound and
// context errors stop immediately; anything else is retried until the budget is spent,
// then returned wrapped in ErrRetriesExhausted.
func (r *Retrying) Geocode(ctx context.Context, loc weather.Location) (Coordinates, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.cfg.InitialInterval
	eb.MaxInterval = r.cfg.MaxInterval
	eb.MaxElapsedTime = 0

	var (
		coords   Coordinates
		attempts int
	)
	op := func() error {
		attempts++
		c, err := r.inner.Geocode(ctx, loc)
		if err == nil {
			coords = c
			return nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.metrics.GeocodeRetries.Inc()
		r.logger.Warn("geocoding failed, retrying",
			"location", loc.Key(), "attempt", attempts, "wait", wait, observability.Err(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.cfg.MaxRetries)), ctx)
	err := backoff.RetryNotify(op, policy, notify)
	switch {
	case err == nil:
		return coords, nil
	case errors.Is(err, ErrNotFound):
		return Coordinates{}, err
	case ctx.Err() != nil:
		return Coordinates{}, ctx.Err()
	default:
		return Coordinates{}, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
	}
}
