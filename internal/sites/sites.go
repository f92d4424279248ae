package sites

import (
	"context"
	"fmt"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Fetcher captures a single platform client (Thingiverse API, Cults3d
// scraper, Printables scraper).
type Fetcher interface {
	Platform() domain.Platform
	FetchTotals(ctx context.Context, externalID string) (domain.Metrics, error)
}

// Registry keeps a mapping from platforms to their fetcher implementations
// and serves as the uniform MetricsSource facing the orchestrator.
type Registry struct {
	fetchers map[domain.Platform]Fetcher
}

var _ ports.MetricsSource = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: map[domain.Platform]Fetcher{}}
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[domain.Platform]Fetcher{}
	}
	r.fetchers[fetcher.Platform()] = fetcher
}

// Resolve returns a fetcher by platform or an error if it is absent.
func (r *Registry) Resolve(platform domain.Platform) (Fetcher, error) {
	if fetcher, ok := r.fetchers[platform]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("platform %s is not registered", platform)
}

// FetchTotals dispatches to the registered platform client.
func (r *Registry) FetchTotals(ctx context.Context, platform domain.Platform, externalID string) (domain.Metrics, error) {
	fetcher, err := r.Resolve(platform)
	if err != nil {
		return domain.Metrics{}, err
	}
	return fetcher.FetchTotals(ctx, externalID)
}
