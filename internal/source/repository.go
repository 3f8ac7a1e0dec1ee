package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/breakers"
	"github.com/sawpanic/selicinsights/internal/cache"
	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/series"
)

const datasetCacheKey = "dataset:v1"

// Repository loads from Postgres behind a circuit breaker and a read-through
// cache. When the database is unavailable it serves the last good data set,
// or the embedded sample before any load has succeeded.
type Repository struct {
	repo    persistence.SeriesRepo
	breaker *breakers.Breaker
	cache   cache.Cache
	ttl     time.Duration

	mu       sync.Mutex
	lastGood series.Dataset
	degraded bool
}

// NewRepository wires the repository source. c may be nil to disable caching.
func NewRepository(repo persistence.SeriesRepo, b *breakers.Breaker, c cache.Cache, ttl time.Duration) *Repository {
	return &Repository{repo: repo, breaker: b, cache: c, ttl: ttl}
}

func (r *Repository) Name() string { return KindPostgres }

// Degraded reports whether the last Load served fallback data.
func (r *Repository) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

// BreakerState exposes the breaker position for health reporting.
func (r *Repository) BreakerState() string { return r.breaker.State() }

func (r *Repository) Load(ctx context.Context) (series.Dataset, error) {
	if ds, ok := r.fromCache(ctx); ok {
		r.remember(ds)
		return ds, nil
	}

	v, err := r.breaker.Execute(func() (any, error) {
		ds, err := r.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(ds) == 0 {
			return nil, series.ErrEmptyDataset
		}
		return ds, nil
	})
	if err != nil {
		return r.fallback(err), nil
	}

	ds := v.(series.Dataset)
	r.toCache(ctx, ds)
	r.remember(ds)
	return ds, nil
}

func (r *Repository) fromCache(ctx context.Context) (series.Dataset, bool) {
	if r.cache == nil {
		return nil, false
	}
	b, ok, err := r.cache.Get(ctx, datasetCacheKey)
	if err != nil {
		log.Warn().Err(err).Msg("Dataset cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var ds series.Dataset
	if err := json.Unmarshal(b, &ds); err != nil || len(ds) == 0 {
		log.Warn().Err(err).Msg("Discarding undecodable cached dataset")
		return nil, false
	}
	return ds, true
}

func (r *Repository) toCache(ctx context.Context, ds series.Dataset) {
	if r.cache == nil {
		return
	}
	b, err := json.Marshal(ds)
	if err != nil {
		log.Warn().Err(err).Msg("Dataset encode failed")
		return
	}
	if err := r.cache.Set(ctx, datasetCacheKey, b, r.ttl); err != nil {
		log.Warn().Err(err).Msg("Dataset cache write failed")
	}
}

func (r *Repository) remember(ds series.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastGood = ds.Clone()
	r.degraded = false
}

func (r *Repository) fallback(cause error) series.Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = true

	if len(r.lastGood) > 0 {
		log.Warn().Err(cause).Str("breaker", r.breaker.State()).
			Msg("Repository load failed, serving last good dataset")
		return r.lastGood.Clone()
	}
	log.Warn().Err(cause).Str("breaker", r.breaker.State()).
		Msg("Repository load failed, serving embedded sample")
	return series.Sample()
}

// Seed writes ds into the repository, used by the seed command.
func Seed(ctx context.Context, repo persistence.SeriesRepo, ds series.Dataset) (int64, error) {
	if err := repo.Upsert(ctx, ds); err != nil {
		return 0, fmt.Errorf("seed series: %w", err)
	}
	return repo.Count(ctx)
}
