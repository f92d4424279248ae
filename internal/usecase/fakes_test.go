package usecase

import (
	"context"
	"fmt"
	"sort"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

type pairKey struct {
	designID int64
	platform domain.Platform
}

type commitRecord struct {
	snapshot domain.Snapshot
	delta    domain.DailyDelta
	rollups  domain.Rollups
}

// fakeStore is an in-memory SnapshotStore and StatisticsCommitter backed by
// sorted slices per pair.
type fakeStore struct {
	snapshots map[pairKey][]domain.Snapshot
	deltas    map[pairKey][]domain.DailyDelta
	commits   []commitRecord

	failCommit         error
	failUpsertSnapshot error
	failUpsertDeltas   error
}

var (
	_ ports.SnapshotStore       = (*fakeStore)(nil)
	_ ports.StatisticsCommitter = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		snapshots: map[pairKey][]domain.Snapshot{},
		deltas:    map[pairKey][]domain.DailyDelta{},
	}
}

func (f *fakeStore) seedSnapshot(s domain.Snapshot) {
	key := pairKey{s.DesignID, s.Platform}
	f.snapshots[key] = insertSnapshot(f.snapshots[key], s)
}

func (f *fakeStore) seedDelta(d domain.DailyDelta) {
	key := pairKey{d.DesignID, d.Platform}
	f.deltas[key] = insertDelta(f.deltas[key], d)
}

func (f *fakeStore) HasSnapshotBefore(_ context.Context, date domain.Date, designID int64, platform domain.Platform) (bool, error) {
	for _, s := range f.snapshots[pairKey{designID, platform}] {
		if s.Date.Before(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindPreviousSnapshot(_ context.Context, date domain.Date, designID int64, platform domain.Platform) (domain.Snapshot, error) {
	var found *domain.Snapshot
	for i, s := range f.snapshots[pairKey{designID, platform}] {
		if s.Date.Before(date) {
			found = &f.snapshots[pairKey{designID, platform}][i]
		}
	}
	if found == nil {
		return domain.Snapshot{}, ports.ErrNoPreviousSnapshot
	}
	return *found, nil
}

func (f *fakeStore) FindSnapshots(_ context.Context, designID int64, platform domain.Platform) ([]domain.Snapshot, error) {
	history := f.snapshots[pairKey{designID, platform}]
	out := make([]domain.Snapshot, len(history))
	copy(out, history)
	return out, nil
}

func (f *fakeStore) SumDeltasForPeriod(_ context.Context, anchor domain.Date, designID int64, platform domain.Platform, periodDays int) (domain.Metrics, error) {
	start := anchor.AddDays(-periodDays)

	var sums domain.Metrics
	for _, d := range f.deltas[pairKey{designID, platform}] {
		if start.Before(d.Date) && d.Date.Before(anchor) {
			sums = sums.Add(d.Values)
		}
	}
	return sums, nil
}

func (f *fakeStore) UpsertSnapshot(_ context.Context, snapshot domain.Snapshot) error {
	if f.failUpsertSnapshot != nil {
		return f.failUpsertSnapshot
	}
	f.seedSnapshot(snapshot)
	return nil
}

func (f *fakeStore) UpsertDeltas(_ context.Context, deltas []domain.DailyDelta) error {
	if f.failUpsertDeltas != nil {
		return f.failUpsertDeltas
	}
	for _, d := range deltas {
		f.seedDelta(d)
	}
	return nil
}

func (f *fakeStore) CommitStatistics(_ context.Context, snapshot domain.Snapshot, delta domain.DailyDelta, rollups domain.Rollups) error {
	if f.failCommit != nil {
		return f.failCommit
	}
	f.seedSnapshot(snapshot)
	f.seedDelta(delta)
	f.commits = append(f.commits, commitRecord{snapshot: snapshot, delta: delta, rollups: rollups})
	return nil
}

func insertSnapshot(history []domain.Snapshot, s domain.Snapshot) []domain.Snapshot {
	for i := range history {
		if history[i].Date.Equal(s.Date) {
			history[i] = s
			return history
		}
	}
	history = append(history, s)
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
	return history
}

func insertDelta(history []domain.DailyDelta, d domain.DailyDelta) []domain.DailyDelta {
	for i := range history {
		if history[i].Date.Equal(d.Date) {
			history[i] = d
			return history
		}
	}
	history = append(history, d)
	sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })
	return history
}

// fakeSource serves canned totals per external id and can fail a configured
// number of times per id before succeeding.
type fakeSource struct {
	totals    map[string]domain.Metrics
	failUntil map[string]int
	calls     int
}

var _ ports.MetricsSource = (*fakeSource)(nil)

func newFakeSource() *fakeSource {
	return &fakeSource{totals: map[string]domain.Metrics{}, failUntil: map[string]int{}}
}

func (f *fakeSource) FetchTotals(_ context.Context, _ domain.Platform, externalID string) (domain.Metrics, error) {
	f.calls++
	if remaining := f.failUntil[externalID]; remaining > 0 {
		f.failUntil[externalID] = remaining - 1
		return domain.Metrics{}, fmt.Errorf("simulated fetch failure for %s", externalID)
	}
	totals, ok := f.totals[externalID]
	if !ok {
		return domain.Metrics{}, fmt.Errorf("unknown external id %s", externalID)
	}
	return totals, nil
}
