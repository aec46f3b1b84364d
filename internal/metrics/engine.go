package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docai",
			Name:      "query_duration_seconds",
			Help:      "Retrieval query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"intent"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docai",
			Name:      "queries_total",
			Help:      "Total number of retrieval queries",
		},
		[]string{"intent", "status"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docai",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docai",
			Name:      "index_rebuilds_total",
			Help:      "Total number of index rebuilds",
		},
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docai",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	IndexedSections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docai",
			Name:      "indexed_sections",
			Help:      "Number of sections in the current index snapshot",
		},
	)

	ExtractedValuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docai",
			Name:      "extracted_values_total",
			Help:      "Total extracted values by kind",
		},
		[]string{"kind"}, // "amount" / "date" / "invoice_id"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexRebuildDuration)
	prometheus.MustRegister(IndexedSections)
	prometheus.MustRegister(ExtractedValuesTotal)
	engineMetricsRegistered = true
}
