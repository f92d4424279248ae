package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"DesignStats/internal/config"
)

const cultsPage = `<!DOCTYPE html>
<html>
<body>
  <div class="product">
    <span data-counter-text-singular="download" data-counter-text-plural="downloads">1 234 downloads</span>
    <span data-like-counter-text-singular="like" data-like-counter-text-plural="likes">57 likes</span>
  </div>
</body>
</html>`

func TestCultsFetchTotals(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/3d-model/home/benchy" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(cultsPage))
	}))
	defer server.Close()

	client := NewCultsClient(server.Client(), config.CultsConfig{BaseURL: server.URL})

	totals, err := client.FetchTotals(context.Background(), "benchy")
	if err != nil {
		t.Fatalf("FetchTotals returned error: %v", err)
	}

	if totals.Downloads != 1234 {
		t.Fatalf("downloads = %d, want 1234", totals.Downloads)
	}
	if totals.Likes != 57 {
		t.Fatalf("likes = %d, want 57", totals.Likes)
	}
	if totals.Views != 0 || totals.Makes != 0 {
		t.Fatalf("counters not on the page must stay zero: %+v", totals)
	}
}

func TestCultsFetchTotalsMissingCounter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>layout changed</p></body></html>`))
	}))
	defer server.Close()

	client := NewCultsClient(server.Client(), config.CultsConfig{BaseURL: server.URL})

	if _, err := client.FetchTotals(context.Background(), "benchy"); err == nil {
		t.Fatalf("expected error when counters are absent")
	}
}

func TestParseCounter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  int64
	}{
		{"1 234 downloads", 1234},
		{"57 likes", 57},
		{"12.345 downloads", 12345},
		{"1,500,000", 1500000},
	}

	for _, c := range cases {
		got, err := parseCounter(c.input)
		if err != nil {
			t.Fatalf("parseCounter(%q) returned error: %v", c.input, err)
		}
		if got != c.want {
			t.Fatalf("parseCounter(%q) = %d, want %d", c.input, got, c.want)
		}
	}

	if _, err := parseCounter("no digits here"); err == nil {
		t.Fatalf("expected error for text without numbers")
	}
}
