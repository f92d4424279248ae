package usecase

import (
	"context"
	"testing"
	"time"

	"DesignStats/internal/domain"
)

func TestClassifyInitial(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	classifier := NewClassifier(store)

	today := domain.Date{Year: 2026, Month: time.March, Day: 7}

	importType, err := classifier.Classify(context.Background(), today, today, 1, domain.PlatformThingiverse)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if importType != domain.ImportInitial {
		t.Fatalf("expected initial, got %s", importType)
	}
}

func TestClassifyRegular(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedSnapshot(domain.Snapshot{
		Date:     domain.Date{Year: 2026, Month: time.March, Day: 6},
		DesignID: 1, Platform: domain.PlatformThingiverse,
		ImportType: domain.ImportRegular,
	})
	classifier := NewClassifier(store)

	today := domain.Date{Year: 2026, Month: time.March, Day: 7}

	importType, err := classifier.Classify(context.Background(), today, today, 1, domain.PlatformThingiverse)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if importType != domain.ImportRegular {
		t.Fatalf("expected regular, got %s", importType)
	}
}

func TestClassifyAdjusted(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.seedSnapshot(domain.Snapshot{
		Date:     domain.Date{Year: 2026, Month: time.March, Day: 1},
		DesignID: 1, Platform: domain.PlatformThingiverse,
		ImportType: domain.ImportRegular,
	})
	classifier := NewClassifier(store)

	today := domain.Date{Year: 2026, Month: time.March, Day: 7}
	backfill := domain.Date{Year: 2026, Month: time.March, Day: 5}

	importType, err := classifier.Classify(context.Background(), backfill, today, 1, domain.PlatformThingiverse)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if importType != domain.ImportAdjusted {
		t.Fatalf("expected adjusted, got %s", importType)
	}
}
