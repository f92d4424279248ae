package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"DesignStats/internal/config"
	"DesignStats/internal/domain"
	"DesignStats/internal/infrastructure/scheduler"
	infrasites "DesignStats/internal/infrastructure/sites"
	"DesignStats/internal/infrastructure/storage"
	"DesignStats/internal/logging"
	"DesignStats/internal/ports"
	"DesignStats/internal/sites"
	"DesignStats/internal/usecase"
)

// Application wires configs to repositories and use cases.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	designs  *storage.DesignRepository
	stats    *storage.StatisticsRepository
	reports  *storage.ReportRepository
	ingestor *usecase.Ingestor
	repairer *usecase.Repairer
	importer *usecase.Importer
}

// UpdateOptions narrow an update run to one pair and optionally seed a zero
// baseline instead of fetching.
type UpdateOptions struct {
	Date               domain.Date
	DesignID           int64
	Platform           domain.Platform
	InitializeWithZero bool
}

// New connects to Postgres, verifies the schema version, and builds the full
// object graph. Callers own the returned application and must Close it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := storage.CheckSchemaVersion(ctx, db, cfg.Database.SchemaVersion); err != nil {
		db.Close()
		return nil, err
	}

	registry := sites.NewRegistry()
	registry.Register(infrasites.NewThingiverseClient(
		&http.Client{Timeout: cfg.Sites.Thingiverse.Timeout}, cfg.Sites.Thingiverse))
	registry.Register(infrasites.NewCultsClient(
		&http.Client{Timeout: cfg.Sites.Cults.Timeout}, cfg.Sites.Cults))
	registry.Register(infrasites.NewPrintablesClient(
		&http.Client{Timeout: cfg.Sites.Printables.Timeout}, cfg.Sites.Printables))

	designs := storage.NewDesignRepository(db)
	stats := storage.NewStatisticsRepository(db)
	reports := storage.NewReportRepository(db)

	aggregator := usecase.NewAggregator(stats)

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Source:     registry,
		Snapshots:  stats,
		Committer:  stats,
		Classifier: usecase.NewClassifier(stats),
		Aggregator: aggregator,
		Throttle: usecase.NewThrottleState(
			cfg.Ingest.ThrottleFloor, cfg.Ingest.ThrottleIncrease, cfg.Ingest.ThrottleDecrease),
		MaxPasses: cfg.Ingest.MaxPasses,
		Logger:    baseLogger.With("component", "ingestor"),
	})

	repairer := usecase.NewRepairer(stats, stats, aggregator, baseLogger.With("component", "repairer"))
	importer := usecase.NewImporter(registry, designs, baseLogger.With("component", "importer"))

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		designs:  designs,
		stats:    stats,
		reports:  reports,
		ingestor: ingestor,
		repairer: repairer,
		importer: importer,
	}, nil
}

// Close releases the database pool.
func (a *Application) Close() error {
	return a.db.Close()
}

// Logger exposes the base logger for command-level reporting.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Designs exposes the design/source store for listing queries.
func (a *Application) Designs() ports.DesignSourceStore {
	return a.designs
}

// Reports exposes the reporting repository.
func (a *Application) Reports() *storage.ReportRepository {
	return a.reports
}

// Update runs one ingestion pass set for the selected pairs. With
// InitializeWithZero set it seeds zero baselines instead of fetching.
func (a *Application) Update(ctx context.Context, opts UpdateOptions) (usecase.RunSummary, error) {
	pairs, err := a.selectPairs(ctx, opts.DesignID, opts.Platform)
	if err != nil {
		return usecase.RunSummary{}, err
	}
	if len(pairs) == 0 {
		return usecase.RunSummary{}, fmt.Errorf("no matching design sources")
	}

	if opts.InitializeWithZero {
		var summary usecase.RunSummary
		for _, pair := range pairs {
			if err := a.ingestor.InitializeWithZero(ctx, opts.Date, pair.DesignID, pair.Platform); err != nil {
				return summary, err
			}
			summary.Processed++
		}
		return summary, nil
	}

	return a.ingestor.Run(ctx, opts.Date, pairs)
}

// Recalculate repairs the history of the selected pairs.
func (a *Application) Recalculate(ctx context.Context, designID int64, platform domain.Platform) ([]usecase.RepairOutcome, error) {
	pairs, err := a.selectPairs(ctx, designID, platform)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no matching design sources")
	}

	return a.repairer.RepairAll(ctx, pairs)
}

// Import registers the design bindings from a JSON import file.
func (a *Application) Import(ctx context.Context, path string, opts usecase.ImportOptions) (usecase.ImportSummary, error) {
	return a.importer.Run(ctx, path, opts)
}

// RunScheduled starts the recurring ingestion job and blocks until the
// context is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression)
	sched := usecase.NewScheduler(driver, a.ingestor, a.designs, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

func (a *Application) selectPairs(ctx context.Context, designID int64, platform domain.Platform) ([]domain.DesignSource, error) {
	pairs, err := a.designs.FindDesignSources(ctx, ports.ListFilter{DesignID: designID, Platform: platform})
	if err != nil {
		return nil, fmt.Errorf("load design sources: %w", err)
	}
	return pairs, nil
}
