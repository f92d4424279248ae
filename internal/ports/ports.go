package ports

import (
	"context"
	"errors"
	"time"

	"DesignStats/internal/domain"
)

// ErrNoPreviousSnapshot is returned by FindPreviousSnapshot when a pair has no
// history before the requested date.
var ErrNoPreviousSnapshot = errors.New("no previous snapshot found")

// MetricsSource fetches the current cumulative totals for one tracked listing.
type MetricsSource interface {
	FetchTotals(ctx context.Context, platform domain.Platform, externalID string) (domain.Metrics, error)
}

// ListFilter narrows design/source lookups. Zero values mean "no filter".
type ListFilter struct {
	DesignID int64
	Platform domain.Platform
	Title    string
	Limit    uint64
}

// DesignSourceStore persists designs and their platform bindings.
type DesignSourceStore interface {
	// InsertSource creates the design (by title) and the platform binding if
	// they do not exist yet, in one transaction, and returns the design id.
	InsertSource(ctx context.Context, title string, platform domain.Platform, externalID string) (int64, error)
	FindDesignSources(ctx context.Context, filter ListFilter) ([]domain.DesignSource, error)
	FindDesigns(ctx context.Context, filter ListFilter) ([]domain.Design, error)
}

// SnapshotStore reads and writes the append-only snapshot history and the
// derived daily deltas.
type SnapshotStore interface {
	// HasSnapshotBefore reports whether any snapshot exists strictly before
	// date for the pair.
	HasSnapshotBefore(ctx context.Context, date domain.Date, designID int64, platform domain.Platform) (bool, error)
	// FindPreviousSnapshot returns the most recent snapshot strictly before
	// date. ErrNoPreviousSnapshot is returned when the history is empty.
	FindPreviousSnapshot(ctx context.Context, date domain.Date, designID int64, platform domain.Platform) (domain.Snapshot, error)
	// FindSnapshots returns the full history of a pair in chronological order.
	FindSnapshots(ctx context.Context, designID int64, platform domain.Platform) ([]domain.Snapshot, error)
	// SumDeltasForPeriod sums daily deltas with date in (anchor-period, anchor),
	// excluding the anchor day itself.
	SumDeltasForPeriod(ctx context.Context, anchor domain.Date, designID int64, platform domain.Platform, periodDays int) (domain.Metrics, error)
	// UpsertSnapshot writes a single snapshot keyed on (date, design, platform).
	UpsertSnapshot(ctx context.Context, snapshot domain.Snapshot) error
	// UpsertDeltas rewrites derived delta rows, one transaction for the batch.
	UpsertDeltas(ctx context.Context, deltas []domain.DailyDelta) error
}

// StatisticsCommitter persists one fully-computed (snapshot, delta, rollups)
// unit transactionally and idempotently.
type StatisticsCommitter interface {
	CommitStatistics(ctx context.Context, snapshot domain.Snapshot, delta domain.DailyDelta, rollups domain.Rollups) error
}

// Scheduler controls when recurring ingestion runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
