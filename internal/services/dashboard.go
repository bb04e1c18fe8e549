package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/storage"
)

// DashboardService computes the dashboard summary, caching it per user until
// the next committed change.
type DashboardService struct {
	store *storage.Store
	cache *cache.LRUCache[core.Dashboard]

	// gen counts invalidations; a summary is only cached when no mutation
	// committed while it was being computed.
	mu  sync.Mutex
	gen uint64

	// loaded runs between reading the lists and caching the result (tests).
	loaded func()
}

func NewDashboardService(store *storage.Store, ttl time.Duration) *DashboardService {
	s := &DashboardService{store: store}
	if ttl > 0 {
		s.cache = cache.NewLRUCache[core.Dashboard](64, ttl)
	}
	return s
}

// Summary aggregates every category and movement, or only those owned by
// usuarioID when it is not zero.
func (s *DashboardService) Summary(ctx context.Context, usuarioID int64) (core.Dashboard, error) {
	key := strconv.FormatInt(usuarioID, 10)
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}
	gen := s.generation()

	var (
		categories []core.Category
		movements  []core.Movement
	)
	q := s.store.Queries()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = q.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		movements, err = q.ListMovements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	categories, movements = core.FilterByUser(categories, movements, usuarioID)
	d := core.Summarize(categories, movements)
	if s.loaded != nil {
		s.loaded()
	}
	s.remember(key, d, gen)
	return d, nil
}

func (s *DashboardService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// remember caches d unless an invalidation happened after gen was read.
func (s *DashboardService) remember(key string, d core.Dashboard, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cache.Set(key, d)
	}
}

// Invalidate drops every cached summary, including any being computed.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Cache exposes the summary cache so it can be swept and inspected.
func (s *DashboardService) Cache() *cache.LRUCache[core.Dashboard] {
	return s.cache
}
