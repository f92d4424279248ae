package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"DesignStats/internal/config"
)

func TestThingiverseFetchTotals(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/things/12345" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 12345,
			"download_count": 1520,
			"like_count": 321,
			"view_count": 90210,
			"make_count": 12,
			"remix_count": 3,
			"comment_count": 45,
			"collect_count": 210
		}`))
	}))
	defer server.Close()

	client := NewThingiverseClient(server.Client(), config.ThingiverseConfig{
		BaseURL:  server.URL,
		APIToken: "test-token",
	})

	totals, err := client.FetchTotals(context.Background(), "12345")
	if err != nil {
		t.Fatalf("FetchTotals returned error: %v", err)
	}

	if totals.Downloads != 1520 {
		t.Fatalf("downloads = %d, want 1520", totals.Downloads)
	}
	if totals.Likes != 321 {
		t.Fatalf("likes = %d, want 321", totals.Likes)
	}
	if totals.Views != 90210 {
		t.Fatalf("views = %d, want 90210", totals.Views)
	}
	if totals.Makes != 12 || totals.Remixes != 3 || totals.Comments != 45 || totals.Collections != 210 {
		t.Fatalf("unexpected counters: %+v", totals)
	}
}

func TestThingiverseFetchTotalsNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewThingiverseClient(server.Client(), config.ThingiverseConfig{
		BaseURL:  server.URL,
		APIToken: "test-token",
	})

	if _, err := client.FetchTotals(context.Background(), "99999"); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}
