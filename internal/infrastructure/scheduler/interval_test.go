package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"esgmonitor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestRunKeepsTickingAfterErrors(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	driver := NewInterval(10*time.Millisecond, testLogger())

	err := driver.Run(ctx, func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected run to stop on context, got %v", err)
	}
	if calls.Load() < 2 {
		t.Fatalf("cycle errors must not stop the scheduler, got %d calls", calls.Load())
	}
}

func TestRunSkipsBusyCycles(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	var busy atomic.Bool
	var skipped, ran atomic.Int32

	driver := NewInterval(10*time.Millisecond, testLogger())

	_ = driver.Run(ctx, func(context.Context) error {
		if !busy.CompareAndSwap(false, true) {
			skipped.Add(1)
			return domain.ErrCycleInFlight
		}
		defer busy.Store(false)
		ran.Add(1)
		return nil
	})

	if ran.Load() < 2 {
		t.Fatalf("expected multiple completed cycles, got %d", ran.Load())
	}
	if skipped.Load() != 0 {
		t.Fatalf("idle cycles must never be skipped, got %d skips", skipped.Load())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := NewInterval(time.Hour, testLogger())
	err := driver.Run(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
