package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dispatchedTotal, dispatchBatchSize) }

var dispatchedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Outbox rows processed by the dispatch loop, labeled by outcome.",
	},
	[]string{"outcome"}, // delivered, unreachable, transient, fatal, dropped, panic
)

var dispatchBatchSize = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "notifications_dispatch_batch_size",
		Help:    "Number of due rows pulled per dispatch cycle.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	},
)

func IncDispatched(outcome string) {
	dispatchedTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveDispatchBatch(n int) {
	dispatchBatchSize.Observe(float64(n))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
