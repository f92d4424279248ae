package usecase

import (
	"context"
	"fmt"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Aggregator computes rolling-window sums of daily deltas for an anchor date.
type Aggregator struct {
	snapshots ports.SnapshotStore
}

// NewAggregator wires the snapshot/delta store.
func NewAggregator(snapshots ports.SnapshotStore) *Aggregator {
	return &Aggregator{snapshots: snapshots}
}

// SumsForPeriod sums the deltas of the periodDays window ending on date. The
// anchor day's own delta is the caller-supplied, not-yet-persisted todayDelta
// and is added explicitly; for a 1-day window no query is needed at all.
func (a *Aggregator) SumsForPeriod(ctx context.Context, date domain.Date, designID int64, platform domain.Platform, periodDays int, todayDelta domain.Metrics) (domain.Metrics, error) {
	if periodDays == 1 {
		return todayDelta, nil
	}

	sums, err := a.snapshots.SumDeltasForPeriod(ctx, date, designID, platform, periodDays)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("period %d: %w", periodDays, err)
	}

	return sums.Add(todayDelta), nil
}

// Rollups computes every tracked window for the anchor date: last 7 and 30
// days, days elapsed in the current month, last 365 days, and day-of-year.
// The all-time column carries the cumulative totals of the anchor snapshot
// rather than a delta sum.
func (a *Aggregator) Rollups(ctx context.Context, date domain.Date, designID int64, platform domain.Platform, todayDelta, totals domain.Metrics) (domain.Rollups, error) {
	last7d, err := a.SumsForPeriod(ctx, date, designID, platform, 7, todayDelta)
	if err != nil {
		return nil, err
	}

	last30d, err := a.SumsForPeriod(ctx, date, designID, platform, 30, todayDelta)
	if err != nil {
		return nil, err
	}

	thisMonth, err := a.SumsForPeriod(ctx, date, designID, platform, date.Day, todayDelta)
	if err != nil {
		return nil, err
	}

	last365d, err := a.SumsForPeriod(ctx, date, designID, platform, 365, todayDelta)
	if err != nil {
		return nil, err
	}

	thisYear, err := a.SumsForPeriod(ctx, date, designID, platform, date.DayOfYear(), todayDelta)
	if err != nil {
		return nil, err
	}

	rollups := make(domain.Rollups, len(domain.MetricTypes))
	for _, metric := range domain.MetricTypes {
		rollups[metric] = domain.RollupValues{
			Last1d:    todayDelta.Get(metric),
			Last7d:    last7d.Get(metric),
			Last30d:   last30d.Get(metric),
			ThisMonth: thisMonth.Get(metric),
			Last365d:  last365d.Get(metric),
			ThisYear:  thisYear.Get(metric),
			Total:     totals.Get(metric),
		}
	}

	return rollups, nil
}
