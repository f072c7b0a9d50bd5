package metrics

import "github.com/prometheus/client_golang/prometheus"

// Rendering and batch Prometheus metrics.
var (
	RenderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barcodex",
			Name:      "render_requests_total",
			Help:      "Total number of barcode render calls",
		},
		[]string{"renderer", "format", "status"}, // renderer: "primary" / "fallback"
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "barcodex",
			Name:      "render_duration_seconds",
			Help:      "Barcode render duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"renderer", "format"},
	)

	RenderFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barcodex",
			Name:      "render_fallbacks_total",
			Help:      "PNG renders that degraded to the generic fallback renderer",
		},
		[]string{"symbology"},
	)

	BatchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barcodex",
			Name:      "batch_items_total",
			Help:      "Batch items by outcome",
		},
		[]string{"outcome"}, // "success" / "invalid" / "render_error" / "canceled"
	)

	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "barcodex",
			Name:      "batch_duration_seconds",
			Help:      "Time to render every item of a batch",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	PreviewCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barcodex",
			Name:      "preview_cache_total",
			Help:      "Preview cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var renderMetricsRegistered bool

// RegisterRenderMetrics registers rendering and batch metrics. Must be called once from main.
func RegisterRenderMetrics() {
	if renderMetricsRegistered {
		return
	}
	prometheus.MustRegister(RenderRequestsTotal)
	prometheus.MustRegister(RenderDuration)
	prometheus.MustRegister(RenderFallbacksTotal)
	prometheus.MustRegister(BatchItemsTotal)
	prometheus.MustRegister(BatchDuration)
	prometheus.MustRegister(PreviewCacheTotal)
	renderMetricsRegistered = true
}
