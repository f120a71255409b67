package menu

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// DefaultTTL bounds catalog staleness when no TTL is configured.
const DefaultTTL = time.Hour

// EmbeddingRef pairs an entry key with its precomputed vector.
type EmbeddingRef struct {
	Key    string
	Vector []float32
}

// Snapshot is an immutable view of the catalog at one refresh.
type Snapshot struct {
	Records    []model.CatalogRecord
	Lookup     map[string]*model.CatalogEntry
	Embeddings []EmbeddingRef
	LoadedAt   time.Time
}

// Entry returns the catalog entry stored under a normalized key.
func (s *Snapshot) Entry(key string) (*model.CatalogEntry, bool) {
	if s == nil || key == "" {
		return nil, false
	}
	e, ok := s.Lookup[key]
	return e, ok
}

// BuildSnapshot normalizes raw records. Nameless records are skipped and a later
// record overwrites an earlier one with the same key. Embeddings follows the
// first-seen key order and only holds entries that carry a vector.
func BuildSnapshot(records []model.CatalogRecord, loadedAt time.Time) *Snapshot {
	snap := &Snapshot{
		Records:  records,
		Lookup:   make(map[string]*model.CatalogEntry, len(records)),
		LoadedAt: loadedAt,
	}
	order := make([]string, 0, len(records))
	for _, rec := range records {
		key := Normalize(rec.Name)
		if key == "" {
			continue
		}
		if _, seen := snap.Lookup[key]; !seen {
			order = append(order, key)
		}
		entry := &model.CatalogEntry{
			Key:         key,
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Price:       rec.Price,
			ItemNumber:  rec.ItemNumber,
			Options:     buildOptionGroups(rec.Options),
			Embedding:   rec.Embedding,
		}
		snap.Lookup[key] = entry
	}
	for _, key := range order {
		if e := snap.Lookup[key]; len(e.Embedding) > 0 {
			snap.Embeddings = append(snap.Embeddings, EmbeddingRef{Key: key, Vector: e.Embedding})
		}
	}
	return snap
}

func buildOptionGroups(opts []model.OptionRecord) []model.OptionGroup {
	groups := make([]model.OptionGroup, 0, len(opts))
	for _, opt := range opts {
		key := Normalize(opt.Name)
		if key == "" {
			continue
		}
		choices := make([]string, 0, len(opt.Choices))
		for _, c := range opt.Choices {
			if n := Normalize(c.Name); n != "" {
				choices = append(choices, n)
			}
		}
		groups = append(groups, model.OptionGroup{
			Name:     opt.Name,
			Key:      key,
			Choices:  choices,
			Required: opt.Required,
		})
	}
	return groups
}

// CacheOption customizes a Cache.
type CacheOption func(*Cache)

// WithClock injects the time source used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// Cache holds a time-bounded catalog snapshot. Concurrent refreshes are
// coalesced into a single store read. A failed refresh keeps serving the
// previous snapshot; a failed first load is returned to the caller.
type Cache struct {
	store model.CatalogStore
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	snap  *Snapshot
	group singleflight.Group
}

func NewCache(store model.CatalogStore, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot, reloading it when empty, expired or forced.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if !forceRefresh && snap != nil && c.now().Sub(snap.LoadedAt) <= c.ttl {
		return snap, nil
	}

	// the flight is shared, so one caller's cancellation must not fail the rest
	v, err, _ := c.group.Do("catalog", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		if snap != nil {
			metrics.CatalogRefreshesTotal.WithLabelValues("stale").Inc()
			logx.Warn().Err(err).Str("component", "catalog_cache").
				Time("loaded_at", snap.LoadedAt).
				Msg("catalog refresh failed, serving previous snapshot")
			return snap, nil
		}
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate forces the next Get to reload. The old snapshot stays available as a fallback.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil {
		stale := *c.snap
		stale.LoadedAt = time.Time{}
		c.snap = &stale
	}
}

func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	logx.Debug().Str("component", "catalog_cache").Msg("refreshing menu catalog")
	records, err := c.store.LoadCatalog(ctx)
	if err != nil {
		metrics.CatalogRefreshesTotal.WithLabelValues("error").Inc()
		logx.Error().Err(err).Str("component", "catalog_cache").Msg("catalog load failed")
		return nil, errx.WrapCatalog(err)
	}

	snap := BuildSnapshot(records, c.now())

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	metrics.CatalogRefreshesTotal.WithLabelValues("ok").Inc()
	logx.Info().Str("component", "catalog_cache").
		Int("items", len(snap.Lookup)).
		Int("embeddings", len(snap.Embeddings)).
		Msg("menu catalog loaded")
	return snap, nil
}
