package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Repairer restores the invariants of a pair's history: one snapshot per
// calendar day between the first and the last capture, deltas consistent with
// neighboring snapshots, and rollups consistent with the deltas. Missing days
// are filled by carrying the previous totals forward as calculated imports.
type Repairer struct {
	snapshots  ports.SnapshotStore
	committer  ports.StatisticsCommitter
	aggregator *Aggregator
	logger     *slog.Logger
}

// RepairOutcome summarizes what one pair's repair changed.
type RepairOutcome struct {
	DesignID         int64
	Platform         domain.Platform
	GapsFilled       int
	DeltasRewritten  int
	MonthsRecomputed int
	Err              error
}

// NewRepairer wires the repair component.
func NewRepairer(snapshots ports.SnapshotStore, committer ports.StatisticsCommitter, aggregator *Aggregator, logger *slog.Logger) *Repairer {
	return &Repairer{snapshots: snapshots, committer: committer, aggregator: aggregator, logger: logger}
}

// RepairAll runs RepairPair for every pair. A failing pair is recorded in its
// outcome and does not stop the remaining pairs.
func (r *Repairer) RepairAll(ctx context.Context, pairs []domain.DesignSource) ([]RepairOutcome, error) {
	outcomes := make([]RepairOutcome, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("repair aborted: %w", err)
		}

		outcome, err := r.RepairPair(ctx, pair.DesignID, pair.Platform)
		if err != nil {
			outcome.DesignID = pair.DesignID
			outcome.Platform = pair.Platform
			outcome.Err = err
			if r.logger != nil {
				r.logger.Warn("repair failed",
					"design_id", pair.DesignID, "platform", pair.Platform, "error", err)
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// RepairPair repairs one (design, platform) pair in three phases: fill gaps
// in the snapshot history, rewrite every delta from the dense history, and
// recompute the rollups of every month the history touches.
func (r *Repairer) RepairPair(ctx context.Context, designID int64, platform domain.Platform) (RepairOutcome, error) {
	outcome := RepairOutcome{DesignID: designID, Platform: platform}

	history, err := r.snapshots.FindSnapshots(ctx, designID, platform)
	if err != nil {
		return outcome, fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		return outcome, nil
	}

	dense, filled, err := r.fillGaps(ctx, history)
	if err != nil {
		return outcome, err
	}
	outcome.GapsFilled = filled

	deltas := deriveDeltas(dense)
	if err := r.snapshots.UpsertDeltas(ctx, deltas); err != nil {
		return outcome, fmt.Errorf("rewrite deltas: %w", err)
	}
	outcome.DeltasRewritten = len(deltas)

	recomputed, err := r.recomputeMonths(ctx, dense, deltas)
	if err != nil {
		return outcome, err
	}
	outcome.MonthsRecomputed = recomputed

	return outcome, nil
}

// fillGaps inserts a calculated snapshot for every missing day between
// consecutive captures, carrying the earlier totals forward. Each synthesized
// snapshot is persisted on its own so a failure mid-gap leaves the already
// written days in place.
func (r *Repairer) fillGaps(ctx context.Context, history []domain.Snapshot) ([]domain.Snapshot, int, error) {
	dense := make([]domain.Snapshot, 0, len(history))
	filled := 0

	for i, snapshot := range history {
		if i > 0 {
			prev := history[i-1]
			for day := prev.Date.AddDays(1); day.Before(snapshot.Date); day = day.AddDays(1) {
				synthesized := domain.Snapshot{
					Date:       day,
					DesignID:   snapshot.DesignID,
					Platform:   snapshot.Platform,
					ImportType: domain.ImportCalculated,
					Totals:     prev.Totals,
				}
				if err := r.snapshots.UpsertSnapshot(ctx, synthesized); err != nil {
					return nil, filled, fmt.Errorf("fill gap at %s: %w", day, err)
				}
				dense = append(dense, synthesized)
				filled++
				if r.logger != nil {
					r.logger.Debug("gap filled",
						"design_id", snapshot.DesignID, "platform", snapshot.Platform, "date", day.String())
				}
			}
		}
		dense = append(dense, snapshot)
	}

	return dense, filled, nil
}

// deriveDeltas recomputes every delta from the dense history. The first
// snapshot has no predecessor and gets an all-zero delta.
func deriveDeltas(dense []domain.Snapshot) []domain.DailyDelta {
	deltas := make([]domain.DailyDelta, len(dense))
	for i, snapshot := range dense {
		delta := domain.DailyDelta{
			Date:       snapshot.Date,
			DesignID:   snapshot.DesignID,
			Platform:   snapshot.Platform,
			ImportType: snapshot.ImportType,
		}
		if i > 0 {
			delta.Values = snapshot.Totals.Sub(dense[i-1].Totals)
		}
		deltas[i] = delta
	}
	return deltas
}

// recomputeMonths recomputes the rollup rows of every month with at least one
// snapshot, anchored on the month's last day in the history. The anchor day's
// delta is already persisted, so it is passed explicitly and excluded from the
// stored range sum.
func (r *Repairer) recomputeMonths(ctx context.Context, dense []domain.Snapshot, deltas []domain.DailyDelta) (int, error) {
	recomputed := 0

	for i, snapshot := range dense {
		last := i == len(dense)-1 || !dense[i+1].Date.SameMonth(snapshot.Date)
		if !last {
			continue
		}

		rollups, err := r.aggregator.Rollups(ctx, snapshot.Date, snapshot.DesignID, snapshot.Platform, deltas[i].Values, snapshot.Totals)
		if err != nil {
			return recomputed, fmt.Errorf("recompute %d-%02d: %w", snapshot.Date.Year, snapshot.Date.Month, err)
		}

		if err := r.committer.CommitStatistics(ctx, snapshot, deltas[i], rollups); err != nil {
			return recomputed, fmt.Errorf("commit %d-%02d: %w", snapshot.Date.Year, snapshot.Date.Month, err)
		}
		recomputed++
	}

	return recomputed, nil
}
