package domain

import "context"

// SyncViewsWorker periodically writes pending views back to the feeds.
type SyncViewsWorker interface {
	Start(ctx context.Context)

	// RunOnce runs one write-back cycle. It returns false without doing
	// anything if a cycle is already running.
	RunOnce(ctx context.Context) bool
}
