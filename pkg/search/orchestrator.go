// Package search serves paginated business searches over a cached,
// deduplicated superset built from several directory providers.
//
// Per query signature a search moves through
//
//	NotSearched -> Fetching -> Enriching -> Deduplicating -> Cached -> Served
//
// and only a cache miss passes through the middle states. Concurrent
// misses for one signature share a single pipeline run.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/cache"
	"github.com/Sternrassler/bizsearch/pkg/dedup"
	"github.com/Sternrassler/bizsearch/pkg/enrich"
	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/Sternrassler/bizsearch/pkg/pagination"
	"github.com/Sternrassler/bizsearch/pkg/provider"
	"github.com/Sternrassler/bizsearch/pkg/quota"
	"github.com/Sternrassler/bizsearch/pkg/record"
	"github.com/Sternrassler/bizsearch/pkg/region"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Config holds orchestration configuration.
type Config struct {
	// DefaultPageSize applies when a request gives no page size.
	DefaultPageSize int

	// MaxPageSize caps the requested page size.
	MaxPageSize int

	// Pagination holds per-source pagination settings. Sources without an
	// entry use DefaultPagination.
	Pagination        map[record.Source]pagination.Config
	DefaultPagination pagination.Config

	// Enrich bounds detail fetches for providers that support them.
	Enrich enrich.Config
}

// DefaultConfig returns the shipped orchestration settings.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		Pagination: map[record.Source]pagination.Config{
			record.SourceKakao:  {MaxPages: 3, Delay: 200 * time.Millisecond},
			record.SourceNaver:  {MaxPages: 5, Delay: 200 * time.Millisecond},
			record.SourceGoogle: {MaxPages: 3, Delay: 200 * time.Millisecond},
		},
		DefaultPagination: pagination.DefaultConfig(),
		Enrich:            enrich.DefaultConfig(),
	}
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	// Providers are the configured clients, one per source.
	Providers []provider.Client

	// Sets maps provider set IDs to ordered sources.
	Sets region.Sets

	// Resolver picks the provider set of a request.
	Resolver *region.Resolver

	// Cache stores supersets. Required.
	Cache *cache.Manager

	// Gate meters page-1 searches. Nil disables metering.
	Gate quota.Gate
}

// Request is one search call.
type Request struct {
	UserID        string
	Query         string
	RegionHint    string
	ProviderSet   string
	ClientAddress string
	Page          int
	PageSize      int
}

// Response is one page of a search.
type Response struct {
	Records     []record.BusinessRecord `json:"records"`
	TotalCount  int                     `json:"total_count"`
	CurrentPage int                     `json:"current_page"`
	TotalPages  int                     `json:"total_pages"`
	ProviderSet region.SetID            `json:"provider_set"`
	Sources     []record.Source         `json:"sources"`
	Warning     string                  `json:"warning,omitempty"`
	CacheHit    bool                    `json:"cache_hit"`
}

// Orchestrator runs searches. It is safe for concurrent use.
type Orchestrator struct {
	providers map[record.Source]provider.Client
	sets      region.Sets
	resolver  *region.Resolver
	cache     *cache.Manager
	gate      quota.Gate
	cfg       Config
	flight    singleflight.Group
	logger    zerolog.Logger
}

// New creates an Orchestrator. Sources of a set without a configured
// client are dropped from that set and a set left empty is disabled.
// At least one set must remain.
func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Cache == nil {
		return nil, errors.New("search: cache is required")
	}
	if deps.Resolver == nil {
		deps.Resolver = region.NewResolver(nil)
	}
	if deps.Sets == nil {
		deps.Sets = region.DefaultSets()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultConfig().DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	logger := logging.NewLogger("search")

	providers := make(map[record.Source]provider.Client, len(deps.Providers))
	for _, p := range deps.Providers {
		if p != nil {
			providers[p.Source()] = p
		}
	}

	sets := make(region.Sets, len(deps.Sets))
	for id, sources := range deps.Sets {
		var usable []record.Source
		for _, src := range sources {
			if _, ok := providers[src]; ok {
				usable = append(usable, src)
				continue
			}
			logger.Warn().
				Str("provider_set", string(id)).
				Str("source", string(src)).
				Msg("No client configured for source, dropping it from the set")
		}
		if len(usable) == 0 {
			logger.Warn().Str("provider_set", string(id)).Msg("Provider set has no configured providers, disabling it")
			continue
		}
		sets[id] = usable
	}
	if len(sets) == 0 {
		return nil, errors.New("search: no provider set has a configured provider")
	}

	return &Orchestrator{
		providers: providers,
		sets:      sets,
		resolver:  deps.Resolver,
		cache:     deps.Cache,
		gate:      deps.Gate,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Search serves one page of results.
//
// Page 1 calls with a user are metered: the quota is checked before any
// fetch and deducted once after the superset is available, whether it came
// from cache or from the providers.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	resp, err := o.search(ctx, req)
	searchRequestsTotal.WithLabelValues(resultLabel(err)).Inc()
	return resp, err
}

func (o *Orchestrator) search(ctx context.Context, req Request) (*Response, error) {
	query := strings.Join(strings.Fields(req.Query), " ")
	if query == "" {
		return nil, ErrInvalidQuery
	}
	hint := strings.Join(strings.Fields(req.RegionHint), " ")

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = o.cfg.DefaultPageSize
	}
	if size > o.cfg.MaxPageSize {
		size = o.cfg.MaxPageSize
	}

	resolution, err := o.resolver.Resolve(ctx, req.ProviderSet, hint, req.ClientAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	sources, err := o.sets.Sources(resolution.Set)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	metered := page == 1 && req.UserID != "" && o.gate != nil
	if metered {
		status, err := o.gate.CheckQuota(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("check quota: %w", err)
		}
		if !status.Allowed {
			return nil, &quota.QuotaExceededError{
				UserID:    req.UserID,
				Remaining: status.Remaining,
				Total:     status.Total,
			}
		}
	}

	sig := cache.NewSignature(query, hint, string(resolution.Set))
	superset, hit, err := o.superset(ctx, sig, provider.Query{Keyword: query, Region: hint}, sources)
	if err != nil {
		return nil, err
	}

	if metered {
		if err := o.gate.DeductQuota(ctx, req.UserID, 1); err != nil {
			// A concurrent search can spend the last unit between check
			// and deduction; that is exhaustion, not a bookkeeping failure.
			var qe *quota.QuotaExceededError
			if errors.As(err, &qe) {
				o.logger.Info().
					Str("user_id", req.UserID).
					Int("remaining", qe.Remaining).
					Int("total", qe.Total).
					Msg("Quota exhausted at deduction")
				return nil, qe
			}
			o.logger.Error().
				Err(err).
				Str("user_id", req.UserID).
				Str("signature", sig.String()).
				Msg("Quota deduction failed after fetch")
			return nil, fmt.Errorf("%w: %w", ErrQuotaDeductionFailed, err)
		}
	}

	resp := &Response{
		Records:     superset.Page(page, size),
		TotalCount:  superset.Total(),
		CurrentPage: page,
		TotalPages:  superset.TotalPages(size),
		ProviderSet: resolution.Set,
		Sources:     append([]record.Source(nil), superset.Sources...),
		Warning:     superset.Warning,
		CacheHit:    hit,
	}

	o.logger.Info().
		Str("signature", sig.String()).
		Str("provider_set", string(resolution.Set)).
		Int("page", page).
		Int("total", resp.TotalCount).
		Bool("cache_hit", hit).
		Msg("Search served")

	return resp, nil
}

// superset returns the cached superset for sig, building it on a miss.
// Concurrent misses for the same signature share one build, which runs
// under the context of the request that started it. A request stops
// waiting when its own context ends. When the shared build was cut short
// by the starting request's context while the waiting request's context
// is still live, the waiting request starts a new build.
func (o *Orchestrator) superset(ctx context.Context, sig cache.QuerySignature, q provider.Query, sources []record.Source) (*cache.Superset, bool, error) {
	key := sig.String()

	if s, err := o.cache.Get(sig); err == nil {
		o.logger.Debug().Str("signature", key).Msg("Cached")
		return s, true, nil
	}

	for {
		ch := o.flight.DoChan(key, func() (any, error) {
			// A flight that finished just before this one started has
			// already cached the result.
			if s, err := o.cache.Get(sig); err == nil {
				return s, nil
			}
			s, err := o.build(ctx, key, q, sources)
			if err != nil {
				return nil, err
			}
			if err := o.cache.Set(sig, s); err != nil {
				return nil, fmt.Errorf("cache superset: %w", err)
			}
			o.logger.Debug().Str("signature", key).Msg("Cached")
			return s, nil
		})

		select {
		case res := <-ch:
			if res.Shared {
				singleflightSharedTotal.Inc()
			}
			if res.Err != nil {
				if isContextError(res.Err) && ctx.Err() == nil {
					o.logger.Debug().Str("signature", key).Msg("Shared build cancelled by its starter, rebuilding")
					continue
				}
				return nil, false, res.Err
			}
			return res.Val.(*cache.Superset), false, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// build runs the pipeline: fetch every source in parallel, enrich, then
// merge and sort.
func (o *Orchestrator) build(ctx context.Context, key string, q provider.Query, sources []record.Source) (*cache.Superset, error) {
	start := time.Now()
	defer func() {
		pipelineDuration.Observe(time.Since(start).Seconds())
	}()

	o.logger.Debug().Str("signature", key).Strs("sources", sourceNames(sources)).Msg("Fetching")

	results := make([]pagination.Result, len(sources))
	errs := make([]error, len(sources))

	// Provider failures are recorded, not returned, so a failing provider
	// never cancels its siblings.
	var g errgroup.Group
	for i, src := range sources {
		client := o.providers[src]
		g.Go(func() error {
			result, err := pagination.Collect(ctx, client, q, o.paginationConfig(src))
			if err != nil {
				errs[i] = err
				return nil
			}
			if fetcher, ok := client.(provider.DetailFetcher); ok && len(result.Records) > 0 {
				o.logger.Debug().Str("signature", key).Str("source", string(src)).Msg("Enriching")
				result.Records = enrich.New(fetcher, o.cfg.Enrich).Enrich(ctx, result.Records)
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed, used []record.Source
	failures := make(map[record.Source]error)
	var all []record.BusinessRecord
	for i, src := range sources {
		if errs[i] != nil {
			failed = append(failed, src)
			failures[src] = errs[i]
			providerFailuresTotal.WithLabelValues(string(src)).Inc()
			o.logger.Warn().
				Err(errs[i]).
				Str("signature", key).
				Str("source", string(src)).
				Str("error_class", string(provider.ClassOf(errs[i]))).
				Msg("Provider failed, continuing with siblings")
			continue
		}
		used = append(used, src)
		all = append(all, results[i].Records...)
	}

	warning := failureWarning(failed)
	if len(failed) == len(sources) {
		o.logger.Error().Str("signature", key).Msg("All providers failed")
		return nil, &AllProvidersFailedError{Warning: warning, Errors: failures}
	}

	o.logger.Debug().Str("signature", key).Int("records", len(all)).Msg("Deduplicating")
	records := dedup.NewRanker(sources).Build(all)

	o.logger.Info().
		Str("signature", key).
		Int("fetched", len(all)).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Superset built")

	return &cache.Superset{
		Records: records,
		Sources: used,
		Warning: warning,
		BuiltAt: time.Now(),
	}, nil
}

func (o *Orchestrator) paginationConfig(src record.Source) pagination.Config {
	if cfg, ok := o.cfg.Pagination[src]; ok {
		return cfg
	}
	return o.cfg.DefaultPagination
}

func sourceNames(sources []record.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrInvalidQuery):
		return resultInvalid
	case errors.Is(err, quota.ErrQuotaExceeded):
		return resultQuotaExceeded
	case errors.Is(err, ErrAllProvidersFailed):
		return resultProvidersFailed
	case errors.Is(err, ErrQuotaDeductionFailed):
		return resultDeductionFailed
	default:
		return resultError
	}
}
