package usecase

import (
	"context"
	"testing"
	"time"

	"DesignStats/internal/domain"
)

func newTestIngestor(store *fakeStore, source *fakeSource, maxPasses int) *Ingestor {
	return NewIngestor(IngestorDeps{
		Source:     source,
		Snapshots:  store,
		Committer:  store,
		Classifier: NewClassifier(store),
		Aggregator: NewAggregator(store),
		Throttle:   NewThrottleState(0, 100*time.Millisecond, 50*time.Millisecond),
		MaxPasses:  maxPasses,
		Now: func() time.Time {
			return time.Date(2026, time.March, 7, 12, 0, 0, 0, time.Local)
		},
	})
}

func testPair() domain.DesignSource {
	return domain.DesignSource{
		DesignID: 1, Title: "Benchy", Platform: domain.PlatformThingiverse, ExternalID: "t1",
	}
}

func TestRunCommitsRegularImport(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedSnapshot(domain.Snapshot{
		Date:     domain.Date{Year: 2026, Month: time.March, Day: 6},
		DesignID: 1, Platform: domain.PlatformThingiverse,
		ImportType: domain.ImportRegular,
		Totals:     domain.Metrics{Downloads: 100, Likes: 10},
	})

	source := newFakeSource()
	source.totals["t1"] = domain.Metrics{Downloads: 120, Likes: 13}

	ingestor := newTestIngestor(store, source, 10)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	summary, err := ingestor.Run(context.Background(), date, []domain.DesignSource{testPair()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(store.commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(store.commits))
	}

	commit := store.commits[0]
	if commit.snapshot.ImportType != domain.ImportRegular {
		t.Fatalf("expected regular import, got %s", commit.snapshot.ImportType)
	}
	if commit.snapshot.Totals.Downloads != 120 {
		t.Fatalf("snapshot downloads = %d, want 120", commit.snapshot.Totals.Downloads)
	}
	if commit.delta.Values.Downloads != 20 || commit.delta.Values.Likes != 3 {
		t.Fatalf("unexpected delta: %+v", commit.delta.Values)
	}
	if commit.rollups[domain.MetricDownloads].Last1d != 20 {
		t.Fatalf("Last1d = %d, want 20", commit.rollups[domain.MetricDownloads].Last1d)
	}
	if commit.rollups[domain.MetricDownloads].Total != 120 {
		t.Fatalf("Total = %d, want 120", commit.rollups[domain.MetricDownloads].Total)
	}
}

func TestRunInitialImportStartsAtZero(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	source := newFakeSource()
	source.totals["t1"] = domain.Metrics{Downloads: 500, Views: 9000}

	ingestor := newTestIngestor(store, source, 10)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	summary, err := ingestor.Run(context.Background(), date, []domain.DesignSource{testPair()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	commit := store.commits[0]
	if commit.snapshot.ImportType != domain.ImportInitial {
		t.Fatalf("expected initial import, got %s", commit.snapshot.ImportType)
	}
	if !commit.delta.Values.IsZero() {
		t.Fatalf("initial delta must be zero, got %+v", commit.delta.Values)
	}
	if commit.rollups[domain.MetricViews] != (domain.RollupValues{}) {
		t.Fatalf("initial rollups must be zero, got %+v", commit.rollups[domain.MetricViews])
	}
	if commit.snapshot.Totals.Downloads != 500 {
		t.Fatalf("snapshot keeps fetched totals, got %+v", commit.snapshot.Totals)
	}
}

func TestRunRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	source := newFakeSource()
	source.totals["t1"] = domain.Metrics{Downloads: 5}
	source.failUntil["t1"] = 1

	ingestor := newTestIngestor(store, source, 10)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	summary, err := ingestor.Run(context.Background(), date, []domain.DesignSource{testPair()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if source.calls != 2 {
		t.Fatalf("expected 2 fetch calls, got %d", source.calls)
	}
	if ingestor.throttle.Delay != 100*time.Millisecond {
		t.Fatalf("expected one slowdown, delay = %v", ingestor.throttle.Delay)
	}
}

func TestRunReportsPersistentFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	source := newFakeSource()
	source.failUntil["t1"] = 100

	ingestor := newTestIngestor(store, source, 3)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	summary, err := ingestor.Run(context.Background(), date, []domain.DesignSource{testPair()})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Processed != 0 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Err == nil {
		t.Fatalf("expected one failure with error, got %+v", summary.Failures)
	}
	if source.calls != 3 {
		t.Fatalf("expected one fetch per pass, got %d calls", source.calls)
	}
	if len(store.commits) != 0 {
		t.Fatalf("failed pair must not commit, got %d commits", len(store.commits))
	}
}

func TestRunSkipsInactivePairs(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	source := newFakeSource()

	pair := testPair()
	pair.Inactive = true

	ingestor := newTestIngestor(store, source, 10)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	summary, err := ingestor.Run(context.Background(), date, []domain.DesignSource{pair})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Processed != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if source.calls != 0 {
		t.Fatalf("inactive pair must not be fetched, got %d calls", source.calls)
	}
}

func TestInitializeWithZero(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ingestor := newTestIngestor(store, newFakeSource(), 10)
	date := domain.Date{Year: 2026, Month: time.March, Day: 7}

	if err := ingestor.InitializeWithZero(context.Background(), date, 1, domain.PlatformCults); err != nil {
		t.Fatalf("InitializeWithZero returned error: %v", err)
	}

	commit := store.commits[0]
	if commit.snapshot.ImportType != domain.ImportInitial {
		t.Fatalf("expected initial import, got %s", commit.snapshot.ImportType)
	}
	if !commit.snapshot.Totals.IsZero() || !commit.delta.Values.IsZero() {
		t.Fatalf("expected zero baseline, got %+v / %+v", commit.snapshot.Totals, commit.delta.Values)
	}

	later := date.AddDays(1)
	if err := ingestor.InitializeWithZero(context.Background(), later, 1, domain.PlatformCults); err == nil {
		t.Fatalf("expected error when history already exists")
	}
}
