package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithOwnerID(ctx, "owner-9")
	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "owner-9", fields["owner_id"])
		assert.NotContains(t, fields, "trace_id")
	}
}

func TestWithContextWithoutFields(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestWithInvoice(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	WithInvoice(zap.New(core), "42", "").Info("sent")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "42", fields["invoice_id"])
	assert.NotContains(t, fields, "invoice_number")
}

func TestBuildConfigRejectsUnknownLevel(t *testing.T) {
	_, err := buildConfig(Config{Level: "loud"})
	assert.Error(t, err)

	cfg, err := buildConfig(Config{Format: "console", Level: "debug"})
	assert.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from invoices"))
	assert.Equal(t, "INSERT", operationFromSQL("(INSERT INTO invoices"))
	assert.Equal(t, "UPDATE", operationFromSQL("  UPDATE invoices SET status = ?"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}
