package domain

import (
	"context"
	"time"
)

// ViewCache is the cache store surface used by the view guard and the
// pending view counter. Every call is atomic on its own; no call spans keys.
type ViewCache interface {
	// PruneViewers drops the viewers of feedID whose expiry is at or before until.
	PruneViewers(ctx context.Context, feedID string, until time.Time) error
	// Viewers lists all recorded viewers of feedID.
	Viewers(ctx context.Context, feedID string) ([]string, error)
	// AddViewer records clientID as a viewer of feedID until expireAt.
	AddViewer(ctx context.Context, feedID, clientID string, expireAt time.Time) error
	// DeleteViewers removes the whole viewer entry of feedID.
	DeleteViewers(ctx context.Context, feedID string) error

	// IncrPendingViews adds one pending view to feedID.
	IncrPendingViews(ctx context.Context, feedID string) error
	// PendingViews returns every pending (feedID, count) pair.
	PendingViews(ctx context.Context) (map[string]int64, error)
	// DrainPendingViews subtracts applied from the pending count of feedID and
	// removes the entry once nothing is left.
	DrainPendingViews(ctx context.Context, feedID string, applied int64) error
	// DeletePendingViews removes the pending count of feedID.
	DeletePendingViews(ctx context.Context, feedID string) error
}

// ViewGuard decides whether a read is a fresh view.
type ViewGuard interface {
	// RegisterView returns true the first time clientID reads feedID within
	// the dedup window. Cache errors are returned, never reported as fresh.
	RegisterView(ctx context.Context, feedID, clientID string) (bool, error)
	// Forget drops the dedup entry of feedID.
	Forget(ctx context.Context, feedID string) error
}

// ViewCounter accumulates fresh views until they are written back.
type ViewCounter interface {
	Increment(ctx context.Context, feedID string) error
	// Forget drops the pending views of feedID.
	Forget(ctx context.Context, feedID string) error
}

// PendingViewSource is the drain side of the ViewCounter. Only the view
// write-back worker uses it.
type PendingViewSource interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
	Drain(ctx context.Context, feedID string, applied int64) error
}
