package view

import (
	"context"

	"github.com/Guyuepp/travel-feed/domain"
)

// Counter buffers fresh views in the cache until the write-back worker
// moves them to the feed rows.
type Counter struct {
	cache domain.ViewCache
}

var (
	_ domain.ViewCounter       = (*Counter)(nil)
	_ domain.PendingViewSource = (*Counter)(nil)
)

func NewCounter(cache domain.ViewCache) *Counter {
	return &Counter{cache: cache}
}

func (c *Counter) Increment(ctx context.Context, feedID string) error {
	return c.cache.IncrPendingViews(ctx, feedID)
}

func (c *Counter) Forget(ctx context.Context, feedID string) error {
	return c.cache.DeletePendingViews(ctx, feedID)
}

// Snapshot returns every feed with pending views.
func (c *Counter) Snapshot(ctx context.Context) (map[string]int64, error) {
	return c.cache.PendingViews(ctx)
}

// Drain removes applied views of feedID. Views added after the snapshot stay.
func (c *Counter) Drain(ctx context.Context, feedID string, applied int64) error {
	return c.cache.DrainPendingViews(ctx, feedID, applied)
}
