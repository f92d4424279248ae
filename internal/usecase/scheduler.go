package usecase

import (
	"context"
	"log/slog"
	"time"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Scheduler wires the cron driver with a recurring full ingestion run for the
// trigger day.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	store    ports.DesignSourceStore
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring ingestion runs.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, store ports.DesignSourceStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, ingestor: ingestor, store: store, logger: logger}
}

// Start registers the ingestion job with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		date := domain.DateOf(trigger)

		pairs, err := s.store.FindDesignSources(ctx, ports.ListFilter{})
		if err != nil {
			s.logger.Error("scheduled run: load pairs", "error", err)
			return
		}

		summary, err := s.ingestor.Run(ctx, date, pairs)
		if err != nil {
			s.logger.Error("scheduled run aborted", "date", date.String(), "error", err)
			return
		}

		s.logger.Info("scheduled run finished",
			"date", date.String(), "processed", summary.Processed, "failed", summary.Failed)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
