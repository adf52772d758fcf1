package usecase

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

// CycleRunner is the job the trigger fires.
type CycleRunner interface {
	RunCycle(ctx context.Context) (int, error)
}

// Scheduler wires the timing driver with the ingestion cycle. Failures and panics of a cycle
// are logged and never stop the schedule.
type Scheduler struct {
	driver ports.Scheduler
	runner CycleRunner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring ingestion.
func NewScheduler(driver ports.Scheduler, runner CycleRunner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers the ingestion job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}
	return s.driver.Start(ctx, s.runJob)
}

// Stop tears down the driver, waiting for a running cycle within ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

func (s *Scheduler) runJob(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ingestion cycle panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	inserted, err := s.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, domain.ErrCycleInProgress):
		s.logger.Warn("ingestion cycle still running, trigger skipped")
	case err != nil:
		s.logger.Error("ingestion cycle failed", "inserted", inserted, "error", err)
	default:
		s.logger.Debug("ingestion cycle completed", "inserted", inserted)
	}
}
