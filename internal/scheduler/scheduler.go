package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// Runner is the pipeline a scheduled job executes.
type Runner interface {
	FetchAndStore(ctx context.Context) (tracker.PositionRecord, error)
}

// Scheduler periodically runs the tracking pipeline.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	timeout   time.Duration
	logger    *log.Logger
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(interval, timeout time.Duration, runner Runner, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately; runs never overlap.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// run executes one pipeline pass. Failures were already logged by the
// layer that observed them.
func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.runner.FetchAndStore(ctx); err != nil {
		s.logger.Printf("DEBUG: scheduler: run ended without a record: %v", err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
