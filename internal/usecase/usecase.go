// Package usecase holds helpers shared by the transactional services.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/metrics"
)

// TransactionFailed logs the cause of an aborted transaction and returns the
// error surfaced to the caller.
func TransactionFailed(mutation string, cause error) error {
	metrics.TransactionFailures.WithLabelValues(mutation).Inc()
	logrus.WithFields(logrus.Fields{
		"mutation": mutation,
	}).Errorf("transaction aborted: %v", cause)
	return fmt.Errorf("%s: %w", mutation, domain.ErrTransactionFailed)
}

// FeedExists loads the feed, asking the bloom filter first. A bloom error
// falls through to the store. The filter only reports a miss while it is
// ready, so a feed whose Add failed is still found.
func FeedExists(ctx context.Context, bloom domain.BloomRepository, feeds domain.FeedRepository, feedID string) (domain.Feed, error) {
	if bloom != nil {
		exists, err := bloom.Exists(ctx, feedID)
		if err != nil {
			logrus.Warnf("bloom filter lookup of feed %s failed: %v", feedID, err)
		} else if !exists {
			return domain.Feed{}, domain.ErrNotFound
		}
	}
	return feeds.GetByID(ctx, nil, feedID)
}

// Retry bounds the retries of a best-effort step run after a commit, such
// as a blob delete or a bloom filter add.
type Retry struct {
	Max  uint64
	Base time.Duration
}

// DefaultRetry is used by the services unless they are given their own.
// Three retries on a 200ms fibonacci backoff wait about a second in total.
var DefaultRetry = Retry{Max: 3, Base: 200 * time.Millisecond}

func (r Retry) backoff() retry.Backoff {
	return retry.WithMaxRetries(r.Max, retry.NewFibonacci(r.Base))
}

// DeleteBlobs removes the objects, retrying with a fibonacci backoff.
func DeleteBlobs(ctx context.Context, blobs domain.BlobStore, r Retry, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if err := blobs.DeleteObjects(ctx, keys); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// CompensateBlobs is DeleteBlobs for cleanups that must not fail the
// caller: the error is logged and counted.
func CompensateBlobs(ctx context.Context, blobs domain.BlobStore, r Retry, keys []string) {
	if err := DeleteBlobs(ctx, blobs, r, keys); err != nil {
		metrics.CompensationFailures.WithLabelValues("blob").Inc()
		logrus.WithField("keys", keys).Errorf("failed to delete blobs: %v", err)
	}
}

// ForgetViews drops the view guard and pending view entries of the feeds.
// Failures are logged; a stale pending entry is dropped by the write-back
// worker once the feed is gone.
func ForgetViews(ctx context.Context, guard domain.ViewGuard, counter domain.ViewCounter, feedIDs ...string) {
	for _, id := range feedIDs {
		if err := guard.Forget(ctx, id); err != nil {
			metrics.CompensationFailures.WithLabelValues("view_guard").Inc()
			logrus.Errorf("failed to forget viewers of feed %s: %v", id, err)
		}
		if err := counter.Forget(ctx, id); err != nil {
			metrics.CompensationFailures.WithLabelValues("view_counter").Inc()
			logrus.Errorf("failed to forget pending views of feed %s: %v", id, err)
		}
	}
}

// AddToBloom registers a committed feed in the filter. When every attempt
// fails the filter is invalidated: lookups go to the store until the next
// full load.
func AddToBloom(ctx context.Context, bloom domain.BloomRepository, r Retry, feedID string) {
	if bloom == nil {
		return
	}
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if err := bloom.Add(ctx, feedID); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return
	}

	metrics.CompensationFailures.WithLabelValues("bloom").Inc()
	logrus.Errorf("failed to add feed %s to bloom filter, invalidating it: %v", feedID, err)
	if err := bloom.Invalidate(ctx); err != nil {
		logrus.Errorf("failed to clear the bloom filter ready bit: %v", err)
	}
}

// BlobKeys lists the object keys of the images.
func BlobKeys(images []domain.Image) []string {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.Key)
	}
	return keys
}
