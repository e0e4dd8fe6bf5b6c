// Package metrics: счётчики Prometheus кассы; отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReceiptsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "receipts_finalized_total",
		Help:      "Receipts committed by finalization.",
	})

	FinalizeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "finalize_failures_total",
		Help:      "Finalizations rolled back.",
	})

	FinalizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cashier",
		Name:      "finalize_duration_seconds",
		Help:      "Time spent in the finalization transaction.",
		Buckets:   prometheus.DefBuckets,
	})

	LineItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "line_items_committed_total",
		Help:      "Line items added to drafts, by kind.",
	}, []string{"kind"})

	RateMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "rate_table_misses_total",
		Help:      "Quantities not covered by any tier of a rate table.",
	})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "status_changes_total",
		Help:      "Job status transitions, by target status.",
	}, []string{"status"})

	Settlements = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "settlements_total",
		Help:      "Debts closed when moving a job to the terminal status.",
	})

	NegativeStock = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashier",
		Name:      "negative_stock_total",
		Help:      "Consumptions that left an inventory item below zero.",
	})
)
