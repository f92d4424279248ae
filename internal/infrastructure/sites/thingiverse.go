package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"DesignStats/internal/config"
	"DesignStats/internal/domain"
	"DesignStats/internal/sites"
)

// ThingiverseClient reads cumulative counters from the Thingiverse REST API.
type ThingiverseClient struct {
	client  *http.Client
	baseURL string
	token   string
}

var _ sites.Fetcher = (*ThingiverseClient)(nil)

// NewThingiverseClient wires an HTTP client for the things endpoint.
func NewThingiverseClient(client *http.Client, cfg config.ThingiverseConfig) *ThingiverseClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.Timeout == 0 {
		client.Timeout = 20 * time.Second
	}
	return &ThingiverseClient{client: client, baseURL: cfg.BaseURL, token: cfg.APIToken}
}

// Platform identifies the client inside the registry.
func (t *ThingiverseClient) Platform() domain.Platform {
	return domain.PlatformThingiverse
}

type thingResponse struct {
	ID            int64 `json:"id"`
	DownloadCount int64 `json:"download_count"`
	LikeCount     int64 `json:"like_count"`
	ViewCount     int64 `json:"view_count"`
	MakeCount     int64 `json:"make_count"`
	RemixCount    int64 `json:"remix_count"`
	CommentCount  int64 `json:"comment_count"`
	CollectCount  int64 `json:"collect_count"`
}

// FetchTotals requests things/{id} and maps the counters.
func (t *ThingiverseClient) FetchTotals(ctx context.Context, externalID string) (domain.Metrics, error) {
	url := fmt.Sprintf("%s/things/%s", t.baseURL, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("request thing %s: %w", externalID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Metrics{}, fmt.Errorf("thingiverse returned %s for thing %s", resp.Status, externalID)
	}

	var thing thingResponse
	if err := json.NewDecoder(resp.Body).Decode(&thing); err != nil {
		return domain.Metrics{}, fmt.Errorf("decode thing %s: %w", externalID, err)
	}

	return domain.Metrics{
		Downloads:   thing.DownloadCount,
		Likes:       thing.LikeCount,
		Views:       thing.ViewCount,
		Makes:       thing.MakeCount,
		Remixes:     thing.RemixCount,
		Comments:    thing.CommentCount,
		Collections: thing.CollectCount,
	}, nil
}
