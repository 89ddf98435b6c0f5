package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// FanOutStage drains fetched articles through the ingestion pipeline with a
// bounded worker pool sized to the available accelerator memory.
type FanOutStage struct {
	pipeline     *Pipeline
	probe        ports.AcceleratorProbe
	useAccel     bool
	memPerWorker int
	logger       *slog.Logger
}

// FanOutStats counts per-article outcomes of one cycle.
type FanOutStats struct {
	Ingested int
	Reused   int
	Skipped  int
	Dropped  int
}

// NewFanOutStage wires the pipeline and accelerator probe.
func NewFanOutStage(pipeline *Pipeline, probe ports.AcceleratorProbe, useAccel bool, memPerWorker int, logger *slog.Logger) *FanOutStage {
	return &FanOutStage{
		pipeline:     pipeline,
		probe:        probe,
		useAccel:     useAccel,
		memPerWorker: memPerWorker,
		logger:       logger,
	}
}

// PoolSize returns 1 without an accelerator; with one, the pool grows to
// memory_gb / memory_gb_per_worker so concurrent workers loading model
// weights stay inside device memory.
func (f *FanOutStage) PoolSize(ctx context.Context) int {
	if !f.useAccel || f.memPerWorker <= 0 {
		return 1
	}

	memoryGB := f.probe.MemoryGB(ctx)
	if memoryGB <= 0 {
		f.logger.Info("no accelerator available, classification runs sequentially")
		return 1
	}

	size := memoryGB / f.memPerWorker
	if size < 1 {
		size = 1
	}

	f.logger.Info("accelerator detected", "memory_gb", memoryGB, "workers", size)
	return size
}

// Run feeds every article through the ingestion pipeline. Articles without a
// tracked organization and locally recovered constraint violations are logged
// and skipped; any other failure cancels the remaining fan-out (fail-fast).
func (f *FanOutStage) Run(ctx context.Context, articles []domain.RawArticle) (FanOutStats, error) {
	if len(articles) == 0 {
		return FanOutStats{}, nil
	}

	workers := f.PoolSize(ctx)
	jobs := make(chan domain.RawArticle)

	var ingested, reused, skipped, dropped atomic.Int64

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(jobs)
		for _, article := range articles {
			select {
			case jobs <- article:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for article := range jobs {
				result, err := f.pipeline.Ingest(ctx, article)

				var constraintErr *domain.ConstraintError
				switch {
				case err == nil:
					if result.Reused {
						reused.Add(1)
					} else {
						ingested.Add(1)
					}
				case errors.Is(err, domain.ErrNoRelevantOrganization):
					f.logger.Warn("skipping article", "title", article.Title, "reason", err)
					skipped.Add(1)
				case errors.As(err, &constraintErr):
					f.logger.Warn("dropping article write", "title", article.Title, "constraint", constraintErr.Error())
					dropped.Add(1)
				default:
					return fmt.Errorf("ingest %q: %w", article.Title, err)
				}
			}
			return nil
		})
	}

	err := group.Wait()
	stats := FanOutStats{
		Ingested: int(ingested.Load()),
		Reused:   int(reused.Load()),
		Skipped:  int(skipped.Load()),
		Dropped:  int(dropped.Load()),
	}

	return stats, err
}
