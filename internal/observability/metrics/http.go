package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records server-side request counts and latency.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	meter := provider.Meter("invoicedesk/http")

	requests, err := meter.Int64Counter("http_server_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_server_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// GinMiddleware records one sample per request, keyed by route template.
func (h *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		attrs := metric.WithAttributes(FilterAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)...)
		ctx := c.Request.Context()
		h.requests.Add(ctx, 1, attrs)
		h.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
