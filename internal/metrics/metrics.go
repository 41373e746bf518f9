// Package metrics holds the prometheus collectors of the service. They are
// registered on the default registry and served by promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travelfeed"

var (
	// Views counts feed detail reads by result: fresh, duplicate or error.
	Views = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_views_total",
		Help:      "Feed detail reads by abuse guard result.",
	}, []string{"result"})

	// WriteBackFeeds counts per feed write-back outcomes: applied, failed or dropped.
	WriteBackFeeds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_writeback_feeds_total",
		Help:      "Pending view entries processed by the write-back worker.",
	}, []string{"result"})

	WriteBackViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_writeback_views_total",
		Help:      "Views written back to the primary store.",
	})

	WriteBackSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_writeback_skipped_cycles_total",
		Help:      "Write-back triggers skipped because a cycle was running.",
	})

	TransactionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_failures_total",
		Help:      "Aborted transactions by mutation.",
	}, []string{"mutation"})

	// CompensationFailures counts post-commit work that could not be done:
	// blob deletes, cache entry removal and bloom filter adds.
	CompensationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compensation_failures_total",
		Help:      "Best effort cleanups that failed.",
	}, []string{"kind"})
)
