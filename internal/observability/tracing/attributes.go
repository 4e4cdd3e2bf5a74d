package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Attributes that may carry client names, emails or addresses never reach a span.
var blockedKeys = map[attribute.Key]struct{}{
	"client.email":   {},
	"client.name":    {},
	"client.address": {},
	"invoice.notes":  {},
	"public_token":   {},
}

// SafeAttributes drops attributes that could leak client data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedKeys[attr.Key]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError reduces an error to its message, truncated.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return errors.New(msg)
}

// ExtractContext pulls the remote span context from inbound headers.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
