package scheduler

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedwatch/pkg/domain"
)

// Coordinator runs a single poll cycle: fetch every source, classify entries, drop already
// notified items and mark the rest as sent.
//
// Items are marked in the dedup cache when they are accepted, before dispatch. A failed send
// is never retried by a later cycle, delivery is at-most-once.
type Coordinator struct {
	sources    []domain.Source
	fetcher    Fetcher
	classifier Classifier
	cache      Cache
}

// CoordinatorParams holds Coordinator dependencies
type CoordinatorParams struct {
	Sources    []domain.Source
	Fetcher    Fetcher
	Classifier Classifier
	Cache      Cache
}

// NewCoordinator makes a Coordinator. Sources are polled in the given order.
func NewCoordinator(params CoordinatorParams) *Coordinator {
	sources := make([]domain.Source, len(params.Sources))
	copy(sources, params.Sources)
	return &Coordinator{
		sources:    sources,
		fetcher:    params.Fetcher,
		classifier: params.Classifier,
		cache:      params.Cache,
	}
}

// RunCycle polls all sources sequentially and returns newly accepted items split by tier.
// Order within each list follows source order, then entry order within the source.
// A failing source is logged and skipped, items it accepted before failing are kept. If ctx is canceled the items accepted so far are returned.
func (c *Coordinator) RunCycle(ctx context.Context) (elevated, normal []domain.Item) {
	for _, src := range c.sources {
		if ctx.Err() != nil {
			lgr.Printf("[INFO] poll cycle interrupted before %s: %v", src.Name, ctx.Err())
			break
		}

		// items accepted before a failure are already marked, keep them
		items, err := c.pollSource(ctx, src)
		if err != nil {
			lgr.Printf("[WARN] failed to poll feed %s, %d items kept: %v", src.Name, len(items), err)
		}

		for _, item := range items {
			if item.Tier == domain.TierElevated {
				elevated = append(elevated, item)
				continue
			}
			normal = append(normal, item)
		}
		if len(items) > 0 {
			lgr.Printf("[INFO] feed %s: %d new matching items", src.Name, len(items))
		}
	}
	return elevated, normal
}

// Sources returns the configured sources
func (c *Coordinator) Sources() []domain.Source {
	res := make([]domain.Source, len(c.sources))
	copy(res, c.sources)
	return res
}

// CacheUsage returns dedup cache occupancy and capacity
func (c *Coordinator) CacheUsage() (size, capacity int) {
	return c.cache.Len(), c.cache.Cap()
}

// pollSource fetches one source and returns its accepted items. A panic while handling
// the source is turned into an error so other sources still run, items accepted before it are returned too.
func (c *Coordinator) pollSource(ctx context.Context, src domain.Source) (items []domain.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	entries, err := c.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	lgr.Printf("[DEBUG] fetched %d entries from %s", len(entries), src.Name)

	for _, entry := range entries {
		item, ok := c.classifier.Classify(entry, src.Name)
		if !ok {
			continue
		}

		key := item.Key()
		if c.cache.Contains(key) {
			lgr.Printf("[DEBUG] skip already notified %s", key)
			continue
		}
		// mark before dispatch, a send failure must not cause a duplicate next cycle
		c.cache.MarkSent(key)
		items = append(items, item)
	}
	return items, nil
}
