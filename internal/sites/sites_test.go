package sites

import (
	"context"
	"testing"

	"DesignStats/internal/domain"
)

type stubFetcher struct {
	platform domain.Platform
	lastID   string
}

func (s *stubFetcher) Platform() domain.Platform { return s.platform }

func (s *stubFetcher) FetchTotals(_ context.Context, externalID string) (domain.Metrics, error) {
	s.lastID = externalID
	return domain.Metrics{Downloads: 42}, nil
}

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	fetcher := &stubFetcher{platform: domain.PlatformCults}
	registry.Register(fetcher)

	totals, err := registry.FetchTotals(context.Background(), domain.PlatformCults, "benchy")
	if err != nil {
		t.Fatalf("FetchTotals returned error: %v", err)
	}
	if totals.Downloads != 42 {
		t.Fatalf("downloads = %d, want 42", totals.Downloads)
	}
	if fetcher.lastID != "benchy" {
		t.Fatalf("fetcher received id %q, want benchy", fetcher.lastID)
	}
}

func TestRegistryUnknownPlatform(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if _, err := registry.FetchTotals(context.Background(), domain.PlatformThingiverse, "1"); err == nil {
		t.Fatalf("expected error for unregistered platform")
	}
}
