package view

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Guyuepp/travel-feed/domain"
)

// DefaultWindow is how long one client counts as a single view of a feed.
const DefaultWindow = 24 * time.Hour

type guard struct {
	cache  domain.ViewCache
	window time.Duration
	now    func() time.Time
}

var _ domain.ViewGuard = (*guard)(nil)

type GuardOption func(*guard)

// WithWindow overrides DefaultWindow.
func WithWindow(d time.Duration) GuardOption {
	return func(g *guard) {
		g.window = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GuardOption {
	return func(g *guard) {
		g.now = now
	}
}

func NewGuard(cache domain.ViewCache, opts ...GuardOption) *guard {
	g := &guard{
		cache:  cache,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterView prunes expired viewers, then records clientID unless it is
// still inside its window. The three steps are not atomic: two concurrent
// first reads from one client may both count.
func (g *guard) RegisterView(ctx context.Context, feedID, clientID string) (bool, error) {
	now := g.now()

	if err := g.cache.PruneViewers(ctx, feedID, now); err != nil {
		return false, fmt.Errorf("prune viewers of feed %s: %w", feedID, err)
	}

	viewers, err := g.cache.Viewers(ctx, feedID)
	if err != nil {
		return false, fmt.Errorf("scan viewers of feed %s: %w", feedID, err)
	}
	if slices.Contains(viewers, clientID) {
		return false, nil
	}

	if err := g.cache.AddViewer(ctx, feedID, clientID, now.Add(g.window)); err != nil {
		return false, fmt.Errorf("add viewer of feed %s: %w", feedID, err)
	}
	return true, nil
}

func (g *guard) Forget(ctx context.Context, feedID string) error {
	return g.cache.DeleteViewers(ctx, feedID)
}
