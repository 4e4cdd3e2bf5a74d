package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddlewareNamesSpanByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/public/invoices/:token", func(c *gin.Context) {
		c.Request = c.Request.WithContext(obscontext.WithOwnerID(c.Request.Context(), "7"))
		c.Set("invoice_id", "42")
		_ = c.Error(errors.New("storage down"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/public/invoices/tok_secret", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "HTTP GET /public/invoices/:token", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("invoicedesk.owner_id", "7"))
	assert.Contains(t, span.Attributes(), attribute.String("invoicedesk.invoice_id", "42"))
	assert.Len(t, span.Events(), 1)
}

func TestSafeAttributesDropsClientData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("client.email", "jane@acme.test"),
		attribute.String("http.route", "/api/invoices/:id"),
	)
	assert.Equal(t, []attribute.KeyValue{attribute.String("http.route", "/api/invoices/:id")}, attrs)
}
