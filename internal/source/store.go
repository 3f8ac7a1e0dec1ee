package source

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/series"
)

// Refresh outcomes reported to the observer.
const (
	RefreshChanged   = "changed"
	RefreshUnchanged = "unchanged"
	RefreshError     = "error"
)

// Observer receives one call per refresh attempt.
type Observer func(result string, records int)

// Store holds the current data set and fans out changes to subscribers.
type Store struct {
	src      Source
	observer Observer
	now      func() time.Time

	mu       sync.RWMutex
	data     series.Dataset
	loadedAt time.Time

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(series.Dataset)
}

// NewStore creates an empty store over src. Call Refresh before serving.
func NewStore(src Source, observer Observer) *Store {
	return &Store{
		src:      src,
		observer: observer,
		now:      time.Now,
		subs:     make(map[int]func(series.Dataset)),
	}
}

// SourceName identifies where the data comes from.
func (s *Store) SourceName() string { return s.src.Name() }

// Source returns the underlying source.
func (s *Store) Source() Source { return s.src }

// Snapshot returns a copy of the current data set and when it was loaded.
func (s *Store) Snapshot() (series.Dataset, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), s.loadedAt
}

// Subscribe registers fn to receive every changed data set. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(series.Dataset)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Refresh reloads from the source. Subscribers are notified only when the
// content differs from what the store already held.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	ds, err := s.src.Load(ctx)
	if err != nil {
		s.observe(RefreshError, 0)
		return false, err
	}

	s.mu.Lock()
	changed := !s.data.Equal(ds)
	if changed {
		s.data = ds.Clone()
	}
	s.loadedAt = s.now()
	s.mu.Unlock()

	if !changed {
		s.observe(RefreshUnchanged, len(ds))
		return false, nil
	}

	s.observe(RefreshChanged, len(ds))
	log.Info().Str("source", s.src.Name()).Int("records", len(ds)).Msg("Dataset updated")

	s.subMu.Lock()
	fns := make([]func(series.Dataset), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ds.Clone())
	}
	return true, nil
}

// Run refreshes every interval until ctx ends. Errors are logged and the
// previous data set is kept.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				log.Warn().Err(err).Str("source", s.src.Name()).Msg("Dataset refresh failed")
			}
		}
	}
}

func (s *Store) observe(result string, records int) {
	if s.observer != nil {
		s.observer(result, records)
	}
}
