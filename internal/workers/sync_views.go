package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/metrics"
)

const (
	DefaultSyncInterval = 10 * time.Minute
	DefaultFeedTimeout  = 5 * time.Second
	DefaultParallelism  = 8
)

// ViewSyncConfig tunes the write-back cycle. Zero values use the defaults.
type ViewSyncConfig struct {
	Interval    time.Duration
	FeedTimeout time.Duration
	Parallelism int
}

type syncViewsWorker struct {
	feedRepo domain.FeedRepository
	pending  domain.PendingViewSource
	cfg      ViewSyncConfig
	running  atomic.Bool
}

var _ domain.SyncViewsWorker = (*syncViewsWorker)(nil)

func NewSyncViewWorker(fr domain.FeedRepository, pending domain.PendingViewSource, cfg ViewSyncConfig) *syncViewsWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = DefaultFeedTimeout
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	return &syncViewsWorker{
		feedRepo: fr,
		pending:  pending,
		cfg:      cfg,
	}
}

// Start runs a cycle every interval until ctx is done, then one last cycle.
func (w *syncViewsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// a slow cycle must not block the ticker, overlapping ticks are skipped
			go w.RunOnce(ctx)
		case <-ctx.Done():
			logrus.Info("shutting down SyncViewsWorker, flushing pending views...")
			for !w.RunOnce(context.WithoutCancel(ctx)) {
				time.Sleep(50 * time.Millisecond)
			}
			return
		}
	}
}

func (w *syncViewsWorker) RunOnce(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		metrics.WriteBackSkipped.Inc()
		logrus.Debug("view write-back already running, skipped")
		return false
	}
	defer w.running.Store(false)

	snapshot, err := w.pending.Snapshot(ctx)
	if err != nil {
		logrus.Errorf("failed to read pending views: %v", err)
		return true
	}
	if len(snapshot) == 0 {
		return true
	}

	var g errgroup.Group
	g.SetLimit(w.cfg.Parallelism)
	for feedID, views := range snapshot {
		g.Go(func() error {
			w.flush(ctx, feedID, views)
			return nil
		})
	}
	_ = g.Wait()

	logrus.WithField("feeds", len(snapshot)).Info("view write-back cycle finished")
	return true
}

// flush writes the views of one feed back and only then drains them.
func (w *syncViewsWorker) flush(ctx context.Context, feedID string, views int64) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.FeedTimeout)
	defer cancel()

	err := w.feedRepo.AddViews(ctx, feedID, views)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// feed 已被删除，丢弃缓存中的计数
		metrics.WriteBackFeeds.WithLabelValues("dropped").Inc()
	case err != nil:
		metrics.WriteBackFeeds.WithLabelValues("failed").Inc()
		logrus.Errorf("failed to write back %d views of feed %s: %v", views, feedID, err)
		return
	default:
		metrics.WriteBackFeeds.WithLabelValues("applied").Inc()
		metrics.WriteBackViews.Add(float64(views))
	}

	if err := w.pending.Drain(ctx, feedID, views); err != nil {
		// 下个周期会重复回写这部分浏览量
		logrus.Errorf("failed to drain %d pending views of feed %s: %v", views, feedID, err)
	}
}
