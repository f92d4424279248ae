package sites

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DesignStats/internal/config"
	"DesignStats/internal/domain"
	"DesignStats/internal/sites"
)

// PrintablesClient scrapes cumulative counters from a Printables model page.
type PrintablesClient struct {
	client  *http.Client
	baseURL string
}

var _ sites.Fetcher = (*PrintablesClient)(nil)

// NewPrintablesClient wires an HTTP client for the model pages.
func NewPrintablesClient(client *http.Client, cfg config.PrintablesConfig) *PrintablesClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.Timeout == 0 {
		client.Timeout = 30 * time.Second
	}
	return &PrintablesClient{client: client, baseURL: cfg.BaseURL}
}

// Platform identifies the client inside the registry.
func (p *PrintablesClient) Platform() domain.Platform {
	return domain.PlatformPrintables
}

// FetchTotals loads the model page and reads the labelled counters from the
// interaction panel. Printables labels each value with the counter name in a
// sibling element, so the page is walked label by label.
func (p *PrintablesClient) FetchTotals(ctx context.Context, externalID string) (domain.Metrics, error) {
	url := fmt.Sprintf("%s/model/%s", p.baseURL, externalID)

	doc, err := fetchDocument(ctx, p.client, url)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s: %w", externalID, err)
	}

	labels := collectLabelledValues(doc)

	downloads, err := labelledCounter(labels, "Download")
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s downloads: %w", externalID, err)
	}

	likes, err := labelledCounter(labels, "Like")
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s likes: %w", externalID, err)
	}

	// Collections and makes are optional panel entries; missing means zero.
	collections, _ := labelledCounter(labels, "Collection")
	makes, _ := labelledCounter(labels, "Make")

	return domain.Metrics{
		Downloads:   downloads,
		Likes:       likes,
		Makes:       makes,
		Collections: collections,
	}, nil
}

// collectLabelledValues pairs each label span with the text of its following
// sibling, e.g. "Download" -> "1 482 x".
func collectLabelledValues(doc *goquery.Document) map[string]string {
	labels := map[string]string{}

	doc.Find("span").Each(func(_ int, node *goquery.Selection) {
		name := strings.TrimSpace(node.Text())
		if name == "" {
			return
		}
		next := node.Next()
		if next.Length() == 0 {
			return
		}
		if _, ok := labels[name]; !ok {
			labels[name] = strings.TrimSpace(next.Text())
		}
	})

	return labels
}

func labelledCounter(labels map[string]string, name string) (int64, error) {
	raw, ok := labels[name]
	if !ok {
		return 0, fmt.Errorf("counter %s not found", name)
	}
	// Values are rendered as "1 482 x"; the trailing multiplier is noise.
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "x")
	return parseCounter(raw)
}
