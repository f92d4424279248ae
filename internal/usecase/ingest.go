package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// IngestorDeps wires all collaborators into the ingestion orchestrator.
type IngestorDeps struct {
	Source     ports.MetricsSource
	Snapshots  ports.SnapshotStore
	Committer  ports.StatisticsCommitter
	Classifier *Classifier
	Aggregator *Aggregator
	Throttle   *ThrottleState
	MaxPasses  int
	Logger     *slog.Logger
	Now        func() time.Time
}

// Ingestor processes all active (design, platform) pairs for a target date:
// fetch totals, classify the import, derive the daily delta, compute rollups,
// and commit the unit. Failed pairs stay pending and are retried on the next
// full pass, up to a bounded pass count.
type Ingestor struct {
	source     ports.MetricsSource
	snapshots  ports.SnapshotStore
	committer  ports.StatisticsCommitter
	classifier *Classifier
	aggregator *Aggregator
	throttle   *ThrottleState
	maxPasses  int
	logger     *slog.Logger
	now        func() time.Time
}

// PairFailure attributes an unresolved error to one (design, platform) pair.
type PairFailure struct {
	DesignID int64
	Title    string
	Platform domain.Platform
	Err      error
}

// RunSummary reports the outcome of one ingestion run.
type RunSummary struct {
	Processed int
	Failed    int
	Failures  []PairFailure
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	maxPasses := deps.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 10
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		source:     deps.Source,
		snapshots:  deps.Snapshots,
		committer:  deps.Committer,
		classifier: deps.Classifier,
		aggregator: deps.Aggregator,
		throttle:   deps.Throttle,
		maxPasses:  maxPasses,
		logger:     deps.Logger,
		now:        now,
	}
}

// Run processes the given pairs for targetDate. The pending set is strictly
// non-growing across passes and the pass counter is bounded, so the run
// always terminates. Per-pair errors never abort the run; the summary carries
// the pairs that stayed unresolved after the last pass.
func (i *Ingestor) Run(ctx context.Context, targetDate domain.Date, pairs []domain.DesignSource) (RunSummary, error) {
	today := domain.DateOf(i.now())

	pending := make(map[int]error, len(pairs))
	for idx := range pairs {
		pending[idx] = nil
	}

	var summary RunSummary
	successes := 0

	for pass := 1; pass <= i.maxPasses && len(pending) > 0; pass++ {
		for idx := 0; idx < len(pairs); idx++ {
			if _, ok := pending[idx]; !ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return summary, fmt.Errorf("run aborted: %w", err)
			}

			pair := pairs[idx]

			if pair.Inactive {
				delete(pending, idx)
				i.debug("skipping inactive pair", pair, pass)
				continue
			}

			if err := i.processPair(ctx, targetDate, today, pair); err != nil {
				pending[idx] = err
				i.warn("pair failed, retrying on next pass", pair, pass, err)
				continue
			}

			delete(pending, idx)
			summary.Processed++
			successes++
			if successes%10 == 0 {
				i.throttle.SpeedUp()
			}
			i.debug("pair processed", pair, pass)
		}
	}

	for _, idx := range sortedKeys(pending) {
		pair := pairs[idx]
		summary.Failed++
		summary.Failures = append(summary.Failures, PairFailure{
			DesignID: pair.DesignID,
			Title:    pair.Title,
			Platform: pair.Platform,
			Err:      pending[idx],
		})
	}

	return summary, nil
}

func (i *Ingestor) processPair(ctx context.Context, targetDate, today domain.Date, pair domain.DesignSource) error {
	if err := i.throttle.Wait(ctx); err != nil {
		return err
	}

	totals, err := i.source.FetchTotals(ctx, pair.Platform, pair.ExternalID)
	if err != nil {
		i.throttle.SlowDown()
		return fmt.Errorf("fetch totals: %w", err)
	}

	importType, err := i.classifier.Classify(ctx, targetDate, today, pair.DesignID, pair.Platform)
	if err != nil {
		return err
	}

	delta := domain.Metrics{}
	if importType != domain.ImportInitial {
		previous, err := i.snapshots.FindPreviousSnapshot(ctx, targetDate, pair.DesignID, pair.Platform)
		if err != nil {
			return fmt.Errorf("previous snapshot: %w", err)
		}
		delta = totals.Sub(previous.Totals)
		if delta.HasNegative() && i.logger != nil {
			// Platforms occasionally correct counters downward; log it,
			// keep the delta as reported.
			i.logger.Warn("negative daily delta",
				"design_id", pair.DesignID, "platform", pair.Platform, "date", targetDate.String())
		}
	}

	rollups := domain.ZeroRollups()
	if importType != domain.ImportInitial {
		rollups, err = i.aggregator.Rollups(ctx, targetDate, pair.DesignID, pair.Platform, delta, totals)
		if err != nil {
			return fmt.Errorf("compute rollups: %w", err)
		}
	}

	snapshot := domain.Snapshot{
		Date:       targetDate,
		DesignID:   pair.DesignID,
		Platform:   pair.Platform,
		ImportType: importType,
		Totals:     totals,
	}
	deltaRow := domain.DailyDelta{
		Date:       targetDate,
		DesignID:   pair.DesignID,
		Platform:   pair.Platform,
		ImportType: importType,
		Values:     delta,
	}

	if err := i.committer.CommitStatistics(ctx, snapshot, deltaRow, rollups); err != nil {
		return fmt.Errorf("commit statistics: %w", err)
	}

	return nil
}

// InitializeWithZero seeds a first all-zero snapshot for a pair that has no
// imports yet, so relative statistics start from a known baseline.
func (i *Ingestor) InitializeWithZero(ctx context.Context, date domain.Date, designID int64, platform domain.Platform) error {
	hasHistory, err := i.snapshots.HasSnapshotBefore(ctx, date, designID, platform)
	if err != nil {
		return err
	}
	if hasHistory {
		return fmt.Errorf("design %d on %s already has imports", designID, platform)
	}

	snapshot := domain.Snapshot{
		Date:       date,
		DesignID:   designID,
		Platform:   platform,
		ImportType: domain.ImportInitial,
	}
	delta := domain.DailyDelta{
		Date:       date,
		DesignID:   designID,
		Platform:   platform,
		ImportType: domain.ImportInitial,
	}

	return i.committer.CommitStatistics(ctx, snapshot, delta, domain.ZeroRollups())
}

func (i *Ingestor) debug(msg string, pair domain.DesignSource, pass int) {
	if i.logger != nil {
		i.logger.Debug(msg, "design_id", pair.DesignID, "title", pair.Title, "platform", pair.Platform, "pass", pass)
	}
}

func (i *Ingestor) warn(msg string, pair domain.DesignSource, pass int, err error) {
	if i.logger != nil {
		i.logger.Warn(msg, "design_id", pair.DesignID, "title", pair.Title, "platform", pair.Platform, "pass", pass, "error", err)
	}
}

func sortedKeys(m map[int]error) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
