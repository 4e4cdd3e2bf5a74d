package tracing

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "invoicedesk/http"

// GinMiddleware opens a server span per request. The span is named after
// the route template so public invoice tokens never appear in span names.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			ctx = withRequestIDBaggage(ctx, requestID)
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName("HTTP " + c.Request.Method + " " + route)

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
			attribute.Float64("http.server.duration_s", time.Since(start).Seconds()),
		}
		// Handlers bind the owner after authentication, so read it from the
		// final request context.
		if owner := obscontext.OwnerIDFromContext(c.Request.Context()); owner != "" {
			attrs = append(attrs, attribute.String("invoicedesk.owner_id", owner))
		}
		if invoiceID := c.GetString("invoice_id"); invoiceID != "" {
			attrs = append(attrs, attribute.String("invoicedesk.invoice_id", invoiceID))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				if safeErr := SafeError(last.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func withRequestIDBaggage(ctx context.Context, requestID string) context.Context {
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.FromContext(ctx).SetMember(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}
