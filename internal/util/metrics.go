package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total number of cart mutations",
	}, []string{"operation"})

	WishlistOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_operations_total",
		Help: "Total number of wishlist mutations",
	}, []string{"operation"})

	StorageReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_reads_total",
		Help: "Persisted slot reads by outcome",
	}, []string{"slot", "outcome"})

	StorageWriteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_write_failures_total",
		Help: "Persisted slot writes that did not reach the backend",
	}, []string{"slot"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Number of shopper sessions held in memory",
	})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of submitted checkouts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of rejected checkouts",
	}, []string{"reason"})

	TransactionsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transactions_recorded_total",
		Help: "Total number of checkout events persisted as transactions",
	})

	DashboardBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_build_latency_seconds",
		Help:    "Latency of loading and aggregating dashboard data",
		Buckets: prometheus.DefBuckets,
	})

	DashboardSourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_source_errors_total",
		Help: "Dashboard collections that failed to load and were replaced by empty ones",
	}, []string{"collection"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
