// Package metrics exposes Prometheus collectors for the crawler service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerFetchesTotal           *prometheus.CounterVec
	crawlerRetriesTotal           prometheus.Counter
	crawlerCategoriesDiscovered   prometheus.Counter
	crawlerProductsHarvested      prometheus.Counter
	crawlerItemsSkippedTotal      *prometheus.CounterVec
	crawlerFlushRowsTotal         *prometheus.CounterVec
	crawlerPolitenessDelaySeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Total upstream fetches, labeled by response kind and status.",
			},
			[]string{"kind", "status"},
		)

		crawlerRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_fetch_retries_total",
				Help: "Total fetch attempts that were retried after a transient failure.",
			},
		)

		crawlerCategoriesDiscovered = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_categories_discovered_total",
				Help: "Total newly discovered categories that received a fresh id.",
			},
		)

		crawlerProductsHarvested = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_products_harvested_total",
				Help: "Total product cards successfully extracted and buffered.",
			},
		)

		crawlerItemsSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_items_skipped_total",
				Help: "Total product cards skipped, labeled by reason.",
			},
			[]string{"reason"},
		)

		crawlerFlushRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_flush_rows_total",
				Help: "Total rows upserted by session flushes, labeled by table.",
			},
			[]string{"table"},
		)

		crawlerPolitenessDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_politeness_delay_seconds",
				Help:    "Histogram of politeness wait durations.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"scope"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch increments the fetch counter.
func ObserveFetch(kind, status string) {
	Init()
	crawlerFetchesTotal.WithLabelValues(kind, status).Inc()
}

// ObserveRetry counts one retried fetch attempt.
func ObserveRetry() {
	Init()
	crawlerRetriesTotal.Inc()
}

// ObserveCategoryDiscovered counts one freshly allocated category id.
func ObserveCategoryDiscovered() {
	Init()
	crawlerCategoriesDiscovered.Inc()
}

// ObserveProductHarvested counts one successfully buffered product.
func ObserveProductHarvested() {
	Init()
	crawlerProductsHarvested.Inc()
}

// ObserveItemSkipped counts one skipped card with its reason.
func ObserveItemSkipped(reason string) {
	Init()
	crawlerItemsSkippedTotal.WithLabelValues(reason).Inc()
}

// ObserveFlush counts the rows written by one table flush.
func ObserveFlush(table string, rows int) {
	Init()
	if rows > 0 {
		crawlerFlushRowsTotal.WithLabelValues(table).Add(float64(rows))
	}
}

// ObservePolitenessDelay records one politeness wait.
func ObservePolitenessDelay(scope string, d time.Duration) {
	Init()
	crawlerPolitenessDelaySeconds.WithLabelValues(scope).Observe(d.Seconds())
}
