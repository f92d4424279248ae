package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"DesignStats/internal/config"
)

const printablesPage = `<!DOCTYPE html>
<html>
<body>
  <div class="interaction-panel">
    <div><span>Download</span><span>1 482 x</span></div>
    <div><span>Like</span><span>203 x</span></div>
    <div><span>Collection</span><span>87 x</span></div>
    <div><span>Make</span><span>9 x</span></div>
  </div>
</body>
</html>`

func TestPrintablesFetchTotals(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model/1234-benchy" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(printablesPage))
	}))
	defer server.Close()

	client := NewPrintablesClient(server.Client(), config.PrintablesConfig{BaseURL: server.URL})

	totals, err := client.FetchTotals(context.Background(), "1234-benchy")
	if err != nil {
		t.Fatalf("FetchTotals returned error: %v", err)
	}

	if totals.Downloads != 1482 {
		t.Fatalf("downloads = %d, want 1482", totals.Downloads)
	}
	if totals.Likes != 203 {
		t.Fatalf("likes = %d, want 203", totals.Likes)
	}
	if totals.Collections != 87 {
		t.Fatalf("collections = %d, want 87", totals.Collections)
	}
	if totals.Makes != 9 {
		t.Fatalf("makes = %d, want 9", totals.Makes)
	}
}

func TestPrintablesOptionalCountersDefaultToZero(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <div><span>Download</span><span>10 x</span></div>
	  <div><span>Like</span><span>2 x</span></div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	client := NewPrintablesClient(server.Client(), config.PrintablesConfig{BaseURL: server.URL})

	totals, err := client.FetchTotals(context.Background(), "1")
	if err != nil {
		t.Fatalf("FetchTotals returned error: %v", err)
	}
	if totals.Collections != 0 || totals.Makes != 0 {
		t.Fatalf("optional counters should be zero: %+v", totals)
	}
}

func TestPrintablesMissingRequiredCounter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><span>Like</span><span>2 x</span></body></html>`))
	}))
	defer server.Close()

	client := NewPrintablesClient(server.Client(), config.PrintablesConfig{BaseURL: server.URL})

	if _, err := client.FetchTotals(context.Background(), "1"); err == nil {
		t.Fatalf("expected error when downloads are absent")
	}
}
