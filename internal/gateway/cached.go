package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/photonhq/photon/internal/cachemanager"
	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/notebook"
)

type searchKey string

type searchInput struct {
	query string
	limit int
}

// CachedGateway memoizes Search. Generation and execution always reach the
// wrapped gateway.
type CachedGateway struct {
	next  Gateway
	cache *cachemanager.InMemoryCacheManager[searchKey, []dataset.SearchResult]
	rtc   *cachemanager.ReadThroughCache[searchKey, []dataset.SearchResult, searchInput]
	ttl   time.Duration
}

var _ Gateway = (*CachedGateway)(nil)

// NewCachedGateway wraps next. A ttl of zero or less disables caching.
func NewCachedGateway(next Gateway, ttl time.Duration) *CachedGateway {
	cache := cachemanager.NewInMemoryCacheManager[searchKey, []dataset.SearchResult](
		"search", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	g := &CachedGateway{next: next, cache: cache, ttl: ttl}
	g.rtc = cachemanager.NewReadThroughCache[searchKey, []dataset.SearchResult, searchInput](
		cache,
		func(ctx context.Context, in searchInput) ([]dataset.SearchResult, error) {
			return next.Search(ctx, in.query, in.limit)
		},
		ttl <= 0,
	)
	return g
}

func cacheKey(query string, limit int) searchKey {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return searchKey(fmt.Sprintf("%s|%d", q, limit))
}

// Search implements Gateway.
func (g *CachedGateway) Search(ctx context.Context, query string, limit int) ([]dataset.SearchResult, error) {
	// Invalid input is rejected by the wrapped gateway and never cached.
	results, hit, err := g.rtc.Get(ctx, cacheKey(query, limit), searchInput{query: query, limit: limit}, g.ttl)
	if err != nil {
		return nil, err
	}
	if hit {
		log.Debug(log.CatCache, "search served from cache", "query", query, "limit", limit)
	}
	out := make([]dataset.SearchResult, len(results))
	copy(out, results)
	return out, nil
}

// GenerateArtifact implements Gateway.
func (g *CachedGateway) GenerateArtifact(ctx context.Context, ref dataset.Reference) (notebook.Artifact, error) {
	return g.next.GenerateArtifact(ctx, ref)
}

// ExecuteCode implements Gateway.
func (g *CachedGateway) ExecuteCode(ctx context.Context, source string, timeoutSeconds int) (ExecutionResult, error) {
	return g.next.ExecuteCode(ctx, source, timeoutSeconds)
}

// Health implements Gateway.
func (g *CachedGateway) Health(ctx context.Context) error {
	return g.next.Health(ctx)
}

// Purge drops every cached search.
func (g *CachedGateway) Purge(ctx context.Context) error {
	return g.cache.Flush(ctx)
}

// CacheStats reports cache counters.
func (g *CachedGateway) CacheStats() cachemanager.Stats {
	return g.cache.Stats()
}

// Reconfigurer is implemented by gateways whose endpoint and limits can be
// changed while they are in use.
type Reconfigurer interface {
	Reconfigure(cfg Config) error
}

// Reconfigure forwards cfg to the wrapped gateway and drops cached results,
// which may belong to the previous endpoint.
func (g *CachedGateway) Reconfigure(cfg Config) error {
	r, ok := g.next.(Reconfigurer)
	if !ok {
		return fmt.Errorf("gateway %T cannot be reconfigured", g.next)
	}
	if err := r.Reconfigure(cfg); err != nil {
		return err
	}
	return g.Purge(context.Background())
}
