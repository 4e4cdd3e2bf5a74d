package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	documentsRendered metric.Int64Counter
	documentsUploaded metric.Int64Counter
	emailsSent        metric.Int64Counter
	remindersSent     metric.Int64Counter
	statusChanges     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "invoicedesk"
	}
	meter := provider.Meter(name)

	documentsRendered, err := meter.Int64Counter("invoicedesk_documents_rendered_total")
	if err != nil {
		return nil, err
	}
	documentsUploaded, err := meter.Int64Counter("invoicedesk_documents_uploaded_total")
	if err != nil {
		return nil, err
	}
	emailsSent, err := meter.Int64Counter("invoicedesk_emails_sent_total")
	if err != nil {
		return nil, err
	}
	remindersSent, err := meter.Int64Counter("invoicedesk_reminders_sent_total")
	if err != nil {
		return nil, err
	}
	statusChanges, err := meter.Int64Counter("invoicedesk_invoice_status_changes_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsRendered: documentsRendered,
		documentsUploaded: documentsUploaded,
		emailsSent:        emailsSent,
		remindersSent:     remindersSent,
		statusChanges:     statusChanges,
	}, nil
}

// RecordDocumentRendered counts rendered documents per backend and outcome.
func (m *Metrics) RecordDocumentRendered(ctx context.Context, backend, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("backend", strings.TrimSpace(backend)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.documentsRendered.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordDocumentUploaded(ctx context.Context, driver string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("driver", strings.TrimSpace(driver)))
	m.documentsUploaded.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordEmailSent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))
	m.emailsSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordReminderSent(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("trigger", strings.TrimSpace(trigger)))
	m.remindersSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStatusChange counts invoice status transitions.
func (m *Metrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from", strings.TrimSpace(from)),
		attribute.String("to", strings.TrimSpace(to)),
	)
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"backend":     {},
	"status":      {},
	"status_code": {},
	"driver":      {},
	"kind":        {},
	"trigger":     {},
	"from":        {},
	"to":          {},
	"method":      {},
	"route":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
