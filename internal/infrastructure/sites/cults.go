package sites

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DesignStats/internal/config"
	"DesignStats/internal/domain"
	"DesignStats/internal/sites"
)

const userAgent = "DesignStats/1.0"

var numberExpr = regexp.MustCompile(`\d[\d\s.,]*`)

// CultsClient scrapes cumulative counters from a Cults3d model page.
type CultsClient struct {
	client  *http.Client
	baseURL string
}

var _ sites.Fetcher = (*CultsClient)(nil)

// NewCultsClient wires an HTTP client for the model detail pages.
func NewCultsClient(client *http.Client, cfg config.CultsConfig) *CultsClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.Timeout == 0 {
		client.Timeout = 30 * time.Second
	}
	return &CultsClient{client: client, baseURL: cfg.BaseURL}
}

// Platform identifies the client inside the registry.
func (c *CultsClient) Platform() domain.Platform {
	return domain.PlatformCults
}

// FetchTotals loads the model page and extracts download and like counters.
// Cults3d does not expose views, makes, remixes, comments, or collections on
// the detail page; those stay zero.
func (c *CultsClient) FetchTotals(ctx context.Context, externalID string) (domain.Metrics, error) {
	url := fmt.Sprintf("%s/en/3d-model/home/%s", c.baseURL, externalID)

	doc, err := fetchDocument(ctx, c.client, url)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s: %w", externalID, err)
	}

	downloads, err := counterValue(doc, `[data-counter-text-singular="download"]`)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s downloads: %w", externalID, err)
	}

	likes, err := counterValue(doc, `[data-like-counter-text-singular="like"]`)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("model %s likes: %w", externalID, err)
	}

	return domain.Metrics{Downloads: downloads, Likes: likes}, nil
}

func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func counterValue(doc *goquery.Document, selector string) (int64, error) {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return 0, fmt.Errorf("counter element %s not found", selector)
	}
	return parseCounter(node.Text())
}

// parseCounter extracts the first number from a counter label such as
// "1 234 downloads" or "57 likes".
func parseCounter(text string) (int64, error) {
	match := numberExpr.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no number in counter text %q", strings.TrimSpace(text))
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", match, err)
	}
	return value, nil
}
