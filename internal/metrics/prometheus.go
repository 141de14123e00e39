package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sync engine
type Metrics struct {
	// Worker metrics
	BatchesFetchedTotal     prometheus.Counter
	RowsComputedTotal       prometheus.Counter
	RowComputeDuration      prometheus.Histogram
	ValidationFailuresTotal prometheus.Counter

	// Dispatcher metrics
	MessagesDispatchedTotal *prometheus.CounterVec
	StaleResultsTotal       *prometheus.CounterVec
	OffsetsAppliedTotal     prometheus.Counter
	NotificationsTotal      prometheus.Counter

	// Token cache metrics
	TokenCacheHitsTotal   prometheus.Counter
	TokenCacheMissesTotal prometheus.Counter
	TokenCacheWritesTotal prometheus.Counter

	// Prefetch metrics
	PrefetchDuration      prometheus.Histogram
	PrefetchRunsTotal     prometheus.Counter
	PrefetchFailuresTotal prometheus.Counter

	// Proxy metrics
	ProxyRequestsTotal     *prometheus.CounterVec
	ProxyRequestDuration   prometheus.Histogram
	ProxyUnauthorizedTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BatchesFetchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_batches_fetched_total",
			Help: "Total number of entity batches fetched and normalized",
		}),
		RowsComputedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_rows_computed_total",
			Help: "Total number of row layouts computed by the sync worker",
		}),
		RowComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_row_compute_duration_seconds",
			Help:    "Duration of row layout computations",
			Buckets: prometheus.DefBuckets,
		}),
		ValidationFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_validation_failures_total",
			Help: "Total number of entity payloads dropped by schema validation",
		}),
		MessagesDispatchedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_messages_dispatched_total",
			Help: "Total number of worker messages handled by the dispatcher",
		}, []string{"kind"}),
		StaleResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_stale_results_total",
			Help: "Total number of row results discarded by the staleness guard",
		}, []string{"reason"}),
		OffsetsAppliedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_offsets_applied_total",
			Help: "Total number of row height corrections accepted and propagated",
		}),
		NotificationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_notifications_total",
			Help: "Total number of user-facing notifications surfaced",
		}),
		TokenCacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_token_cache_hits_total",
			Help: "Total number of token cache lookups that found a token",
		}),
		TokenCacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_token_cache_misses_total",
			Help: "Total number of token cache lookups that found nothing",
		}),
		TokenCacheWritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_token_cache_writes_total",
			Help: "Total number of tokens written to the cache",
		}),
		PrefetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_prefetch_duration_seconds",
			Help:    "Duration of the full prefetch sequence",
			Buckets: prometheus.DefBuckets,
		}),
		PrefetchRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_prefetch_runs_total",
			Help: "Total number of prefetch sequences started",
		}),
		PrefetchFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_prefetch_failures_total",
			Help: "Total number of prefetch sequences that failed",
		}),
		ProxyRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_proxy_requests_total",
			Help: "Total number of media requests handled by the byte-authorization proxy",
		}, []string{"status"}),
		ProxyRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gallery_proxy_request_duration_seconds",
			Help:    "Duration of proxied media requests",
			Buckets: prometheus.DefBuckets,
		}),
		ProxyUnauthorizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gallery_proxy_unauthorized_total",
			Help: "Total number of media requests rejected for missing tokens",
		}),
	}
}

// NewNopMetrics creates metrics bound to a throwaway registry, for tests
// and for callers that do not export metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
