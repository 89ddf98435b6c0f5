// Package scheduler drives the periodic analysis cycle.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"esgmonitor/internal/domain"
)

// CycleFunc runs one full fetch + fan-out cycle. It returns
// domain.ErrCycleInFlight when a previous cycle still holds the in-flight
// flag.
type CycleFunc func(ctx context.Context) error

// Interval fires the cycle on a fixed period. The timer is re-armed at
// interval from each tick, never from cycle completion, so ticks do not
// queue up behind a slow cycle.
type Interval struct {
	interval time.Duration
	logger   *slog.Logger
}

// NewInterval builds the driver.
func NewInterval(interval time.Duration, logger *slog.Logger) *Interval {
	return &Interval{interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. A busy cycle is logged and skipped; any
// other cycle error is logged and the next tick stays armed.
func (s *Interval) Run(ctx context.Context, cycle CycleFunc) error {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		timer.Reset(s.interval)

		err := cycle(ctx)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrCycleInFlight):
			s.logger.Warn("skipping analysis cycle, previous cycle still running")
		case errors.Is(err, context.Canceled):
			return err
		default:
			s.logger.Error("analysis cycle failed", "error", err)
		}
	}
}
