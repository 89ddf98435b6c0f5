package app

import (
	"context"
	"fmt"
	"log/slog"

	"esgmonitor/internal/config"
	"esgmonitor/internal/infrastructure/accel"
	"esgmonitor/internal/infrastructure/ml"
	"esgmonitor/internal/infrastructure/scheduler"
	"esgmonitor/internal/infrastructure/search"
	"esgmonitor/internal/infrastructure/storage"
	"esgmonitor/internal/infrastructure/telegram"
	"esgmonitor/internal/logging"
	"esgmonitor/internal/ports"
	"esgmonitor/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	store     *storage.Store
	runner    *usecase.Runner
	queries   *usecase.Queries
	scheduler *scheduler.Interval
	logger    *slog.Logger
}

// New builds a runnable application instance. The store handle is created
// exactly once here and shared by reference with every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.DSN, storage.Thresholds{
		Relevancy:           cfg.Pipeline.RelevancyThreshold,
		IndicatorMembership: cfg.Pipeline.IndicatorMembershipThreshold,
	}, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	searchClient := search.NewClient(cfg.Search.BaseURL, cfg.Search.Language, nil)
	classifier := ml.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.APIKey)
	probe := accel.NewNvidiaProbe(baseLogger.With("component", "accel"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Store:      store,
		Search:     searchClient,
		Classifier: classifier,
		Probe:      probe,
		Notifier:   notifier,
		Config:     cfg.Pipeline,
		Logger:     baseLogger.With("component", "cycle"),
	})

	return &Application{
		cfg:       cfg,
		store:     store,
		runner:    runner,
		queries:   usecase.NewQueries(store),
		scheduler: scheduler.NewInterval(cfg.Pipeline.CycleInterval, baseLogger.With("component", "scheduler")),
		logger:    baseLogger,
	}, nil
}

// Queries exposes the read/management surface to an API layer.
func (a *Application) Queries() *usecase.Queries {
	return a.queries
}

// Run starts the cycle scheduler and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("analysis cycles armed", "interval", a.cfg.Pipeline.CycleInterval)
	return a.scheduler.Run(ctx, a.runner.Run)
}

// Close releases the store handle.
func (a *Application) Close() {
	a.store.Close()
}
