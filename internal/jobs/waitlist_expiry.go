package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// runTimeout bounds a single sweep.
const runTimeout = 2 * time.Minute

// WaitlistExpirer is the part of the booking service the sweep needs.
type WaitlistExpirer interface {
	ExpireStaleWaitlist(ctx context.Context) (int64, error)
}

// Scheduler runs background sweeps on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// AddWaitlistExpiry schedules the sweep that marks waiting entries of finished
// sessions as expired. An empty schedule leaves the sweep disabled.
func (s *Scheduler) AddWaitlistExpiry(schedule string, expirer WaitlistExpirer) error {
	if schedule == "" {
		s.logger.Info("Waitlist expiry sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, func() { RunWaitlistExpiry(context.Background(), expirer, s.logger) }); err != nil {
		return fmt.Errorf("schedule waitlist expiry %q: %w", schedule, err)
	}
	s.logger.Info("Waitlist expiry sweep scheduled", "schedule", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running sweeps to finish or ctx to end, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

// RunWaitlistExpiry performs one sweep.
func RunWaitlistExpiry(ctx context.Context, expirer WaitlistExpirer, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	n, err := expirer.ExpireStaleWaitlist(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Waitlist expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.InfoContext(ctx, "Expired stale waitlist entries", "count", n)
	}
}
