package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"esgmonitor/internal/config"
	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
	"esgmonitor/internal/recognize"
)

// Runner executes one full analysis cycle: load the organization catalog,
// fetch news for every search term, and fan the results out through the
// ingestion pipeline. It owns the single in-flight flag the scheduler checks.
type Runner struct {
	store      ports.Store
	search     ports.SearchProvider
	classifier ports.Classifier
	probe      ports.AcceleratorProbe
	notifier   ports.Notifier
	cfg        config.PipelineConfig
	logger     *slog.Logger

	busy atomic.Bool
}

// RunnerDeps wires the cycle's collaborators. Notifier may be nil.
type RunnerDeps struct {
	Store      ports.Store
	Search     ports.SearchProvider
	Classifier ports.Classifier
	Probe      ports.AcceleratorProbe
	Notifier   ports.Notifier
	Config     config.PipelineConfig
	Logger     *slog.Logger
}

// NewRunner constructs the cycle use case.
func NewRunner(deps RunnerDeps) *Runner {
	return &Runner{
		store:      deps.Store,
		search:     deps.Search,
		classifier: deps.Classifier,
		probe:      deps.Probe,
		notifier:   deps.Notifier,
		cfg:        deps.Config,
		logger:     deps.Logger,
	}
}

// Busy reports whether a cycle currently holds the in-flight flag.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Run executes one cycle to completion, or returns domain.ErrCycleInFlight
// when a previous cycle is still running.
func (r *Runner) Run(ctx context.Context) error {
	if !r.busy.CompareAndSwap(false, true) {
		return domain.ErrCycleInFlight
	}
	defer r.busy.Store(false)

	started := time.Now()
	r.logger.Info("starting analysis cycle")

	organizations, err := r.store.Organizations(ctx)
	if err != nil {
		return fmt.Errorf("load organizations: %w", err)
	}

	terms := searchTerms(organizations)
	if len(terms) == 0 {
		r.logger.Info("no tracked organizations, cycle is a no-op")
		return nil
	}

	fetch := NewFetchStage(r.search, r.cfg.MaxFetchThreads, r.cfg.ScrapeFullArticles,
		r.logger.With("component", "fetch"))
	articles := fetch.Run(ctx, terms)

	pipeline := NewPipeline(PipelineDeps{
		Store:      r.store,
		Classifier: r.classifier,
		Recognizer: recognize.New(organizations),
		Logger:     r.logger.With("component", "pipeline"),
	})

	fanout := NewFanOutStage(pipeline, r.probe, r.cfg.UseAccelerator,
		r.cfg.AcceleratorMemoryGBPerWorker, r.logger.With("component", "fanout"))

	stats, err := fanout.Run(ctx, articles)
	if err != nil {
		return fmt.Errorf("fan-out: %w", err)
	}

	r.logger.Info("analysis cycle done",
		"elapsed", time.Since(started).Round(time.Second),
		"fetched", len(articles),
		"ingested", stats.Ingested,
		"deduplicated", stats.Reused,
		"skipped", stats.Skipped,
		"dropped", stats.Dropped,
	)

	r.publishDigest(ctx, len(articles), stats)
	return nil
}

// searchTerms flattens the catalog into the full set of search terms:
// every organization name plus every synonym.
func searchTerms(organizations []domain.Organization) []string {
	var terms []string
	for _, org := range organizations {
		terms = append(terms, org.Name)
	}
	for _, org := range organizations {
		terms = append(terms, org.Synonyms...)
	}
	return terms
}

func (r *Runner) publishDigest(ctx context.Context, fetched int, stats FanOutStats) {
	if r.notifier == nil {
		return
	}

	digest := domain.CycleDigest{
		Fetched:      fetched,
		Ingested:     stats.Ingested,
		Deduplicated: stats.Reused,
		Skipped:      stats.Skipped,
		Dropped:      stats.Dropped,
	}

	if err := r.notifier.PublishDigest(ctx, digest); err != nil {
		r.logger.Warn("cycle digest not delivered", "error", err)
	}
}
