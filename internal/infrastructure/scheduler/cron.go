package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"Zenframe/internal/config"
	"Zenframe/internal/ports"
	"Zenframe/pkg/logger"
)

// CronScheduler runs the ingestion job on a fixed interval with robfig/cron. Overlapping
// firings are dropped, panics are recovered and firings later than the misfire grace are skipped.
type CronScheduler struct {
	interval   time.Duration
	grace      time.Duration
	runOnStart bool
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	cron     *cron.Cron
	schedule *trackedSchedule
	inflight sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from configuration.
func NewCronScheduler(cfg config.SchedulerConfig, log *slog.Logger) *CronScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &CronScheduler{
		interval:   cfg.Interval,
		grace:      cfg.MisfireGrace,
		runOnStart: cfg.RunOnStart,
		logger:     log,
		now:        time.Now,
	}
}

// Start registers job and begins firing. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(context.Context)) error {
	if job == nil {
		return nil
	}
	if c.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	cl := logger.NewCronLogger(c.logger)
	c.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.schedule = &trackedSchedule{inner: cron.Every(c.interval)}

	id := c.cron.Schedule(c.schedule, cron.FuncJob(func() {
		now := c.now()
		if !c.shouldRun(c.schedule.firedAt(now), now) {
			return
		}
		job(ctx)
	}))

	c.cron.Start()
	c.logger.Info("ingestion scheduler started", "interval", c.interval, "misfire_grace", c.grace)

	if c.runOnStart {
		wrapped := c.cron.Entry(id).WrappedJob
		c.inflight.Add(1)
		go func() {
			defer c.inflight.Done()
			wrapped.Run()
		}()
	}
	return nil
}

// Stop prevents new firings and waits for a running job or until ctx is done.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		<-cr.Stop().Done()
		c.inflight.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		c.logger.Info("ingestion scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shouldRun drops firings that start more than the grace period after their activation time.
func (c *CronScheduler) shouldRun(scheduled, now time.Time) bool {
	if c.grace <= 0 || scheduled.IsZero() {
		return true
	}
	if late := now.Sub(scheduled); late > c.grace {
		c.logger.Warn("misfired ingestion trigger dropped",
			"scheduled", scheduled,
			"late_by", late,
			"grace", c.grace,
		)
		return false
	}
	return true
}

// trackedSchedule remembers the activation times it handed out so a firing job can
// learn when it was due.
type trackedSchedule struct {
	inner cron.Schedule

	mu   sync.Mutex
	prev time.Time
	next time.Time
}

func (s *trackedSchedule) Next(t time.Time) time.Time {
	n := s.inner.Next(t)
	s.mu.Lock()
	s.prev, s.next = s.next, n
	s.mu.Unlock()
	return n
}

// firedAt returns the activation time of the firing starting at now. cron may or may not
// have advanced the entry yet, so a future next time means the previous one fired.
func (s *trackedSchedule) firedAt(now time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.next.IsZero() && !s.next.After(now) {
		return s.next
	}
	return s.prev
}
