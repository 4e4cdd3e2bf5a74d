package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDocumentCollectorCountsByStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewDocumentCollector(registry)

	collector.ObserveRender("canvas", 10*time.Millisecond, 2048, nil)
	collector.ObserveRender("canvas", 5*time.Millisecond, 0, errors.New("boom"))
	collector.ObserveRender("flow", time.Millisecond, 512, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.renders.WithLabelValues("canvas", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.renders.WithLabelValues("canvas", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.renders.WithLabelValues("flow", "ok")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *DocumentCollector
	assert.NotPanics(t, func() {
		c.ObserveRender("canvas", time.Second, 1, nil)
		c.ObservePages(3)
	})
}
