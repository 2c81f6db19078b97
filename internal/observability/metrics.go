package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	reportCardsTotal       *prometheus.CounterVec
	batchFailuresTotal     *prometheus.CounterVec
	batchDurationSeconds   prometheus.Histogram
	documentCacheHitsTotal prometheus.Counter
	documentCacheMissTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		reportCardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_cards_total",
			Help: "Report card ensure outcomes, labelled created or existing.",
		}, []string{"result"})

		batchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_student_failures_total",
			Help: "Per-student failures recorded by batch generation, by category.",
		}, []string{"category"})

		batchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "batch_generation_duration_seconds",
			Help:    "Wall-clock duration of grade-wide report card generation runs.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		})

		documentCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_cache_hits_total",
			Help: "Report card documents served from cache.",
		})

		documentCacheMissTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_cache_misses_total",
			Help: "Report card documents regenerated after a cache miss.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			reportCardsTotal, batchFailuresTotal, batchDurationSeconds,
			documentCacheHitsTotal, documentCacheMissTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ReportCards exposes the ensure-outcome counter.
func ReportCards() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCardsTotal
}

// BatchFailures exposes the per-category batch failure counter.
func BatchFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return batchFailuresTotal
}

// BatchDuration exposes the batch duration histogram.
func BatchDuration() prometheus.Histogram {
	RegisterMetrics()
	return batchDurationSeconds
}

// DocumentCacheHits exposes the cache hit counter.
func DocumentCacheHits() prometheus.Counter {
	RegisterMetrics()
	return documentCacheHitsTotal
}

// DocumentCacheMisses exposes the cache miss counter.
func DocumentCacheMisses() prometheus.Counter {
	RegisterMetrics()
	return documentCacheMissTotal
}
