package domain

import "context"

// BloomRepository answers "may this feed exist" without touching the database.
type BloomRepository interface {
	// Add puts the ID into the filter
	Add(ctx context.Context, id string) error

	// Exists checks whether the ID may exist.
	// true: may exist, look it up in the database.
	// false: definitely does not exist. Only answered while the filter is
	// ready, see MarkReady.
	Exists(ctx context.Context, id string) (bool, error)

	// BulkAdd adds many IDs at once
	BulkAdd(ctx context.Context, ids []string) error

	// MarkReady is called once every stored ID has been added.
	MarkReady(ctx context.Context) error

	// Invalidate makes Exists answer true for every ID until the next
	// MarkReady. Used when an Add could not be applied.
	Invalidate(ctx context.Context) error
}
