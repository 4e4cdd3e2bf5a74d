package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DocumentCollector exposes document pipeline metrics for Prometheus scraping.
type DocumentCollector struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderBytes    *prometheus.HistogramVec
	pages          prometheus.Histogram
}

// NewDocumentCollector registers document metrics on the given registry.
func NewDocumentCollector(registry *prometheus.Registry) *DocumentCollector {
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoicedesk_document_renders_total",
		Help: "Counts invoice document renders by backend and status.",
	}, []string{"backend", "status"})

	renderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicedesk_document_render_duration_seconds",
		Help:    "Time spent rendering one invoice document.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	renderBytes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoicedesk_document_size_bytes",
		Help:    "Size of rendered invoice documents.",
		Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
	}, []string{"backend"})

	pages := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoicedesk_document_pages",
		Help:    "Page count of canvas PDF documents.",
		Buckets: []float64{1, 2, 3, 5, 8, 13},
	})

	if registry != nil {
		registry.MustRegister(renders, renderDuration, renderBytes, pages)
	}

	return &DocumentCollector{
		renders:        renders,
		renderDuration: renderDuration,
		renderBytes:    renderBytes,
		pages:          pages,
	}
}

// ObserveRender records one render attempt.
func (c *DocumentCollector) ObserveRender(backend string, took time.Duration, size int, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(backend, status).Inc()
	c.renderDuration.WithLabelValues(backend).Observe(took.Seconds())
	if err == nil {
		c.renderBytes.WithLabelValues(backend).Observe(float64(size))
	}
}

func (c *DocumentCollector) ObservePages(pages int) {
	if c == nil || pages <= 0 {
		return
	}
	c.pages.Observe(float64(pages))
}
