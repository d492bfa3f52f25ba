package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

const defaultInterval = 15 * time.Minute

// Recorder records the current weather for one location. *weather.Service implements it.
type Recorder interface {
	Record(ctx context.Context, loc weather.Location) (weather.Result, error)
}

// Summary counts the outcomes of one fetch round.
type Summary struct {
	Recorded int
	Dropped  int // fetched, but the store rejected the observation
	Failed   int
}

// Scheduler periodically fetches weather data for configured locations.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	recorder   Recorder
	locations  []weather.Location
	interval   time.Duration
	jobTimeout time.Duration
	logger     *slog.Logger
	onComplete func(context.Context, Summary)
}

// New creates a new Scheduler. A non-positive interval falls back to 15 minutes.
func New(locations []weather.Location, interval time.Duration, recorder Recorder, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		recorder:   recorder,
		locations:  locations,
		interval:   interval,
		jobTimeout: 30 * time.Second,
		logger:     logger,
	}
}

// OnComplete registers fn to run after every fetch round.
func (s *Scheduler) OnComplete(fn func(context.Context, Summary)) {
	s.onComplete = fn
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first round runs immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Warn("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval, "locations", len(s.locations))
	return nil
}

// RunOnce records every configured location concurrently and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) Summary {
	s.logger.Info("scheduler: running weather fetch job")

	var (
		wg                        sync.WaitGroup
		recorded, dropped, failed atomic.Int64
	)
	for _, loc := range s.locations {
		loc := loc // per-iteration copy; module targets go 1.21 loop semantics
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
			defer cancel()

			res, err := s.recorder.Record(ctx, loc)
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.Warn("scheduler: fetch failed", "location", loc.Key(), observability.Err(err))
			case !res.Stored:
				dropped.Add(1)
			default:
				recorded.Add(1)
			}
		}()
	}
	wg.Wait()

	sum := Summary{Recorded: int(recorded.Load()), Dropped: int(dropped.Load()), Failed: int(failed.Load())}
	s.logger.Info("scheduler: completed weather fetch job",
		"recorded", sum.Recorded, "dropped", sum.Dropped, "failed", sum.Failed)
	if s.onComplete != nil {
		s.onComplete(ctx, sum)
	}
	return sum
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
