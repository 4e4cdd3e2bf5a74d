package invoice

import (
	"context"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/browser"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/canvas"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/flow"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/receipt"
	"github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"github.com/smallbiznis/invoicedesk/internal/invoice/service"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(NewRegistry),
	fx.Provide(service.NewService),
	fx.Provide(service.NewDocumentService),
	fx.Provide(service.NewDeliveryService),
)

type RegistryParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Collector *metrics.DocumentCollector `optional:"true"`
}

// NewRegistry wires every document backend. The browser backend is only
// registered when Chrome is enabled.
func NewRegistry(p RegistryParams) *render.Registry {
	html := flow.New()
	backends := []render.Backend{
		canvas.New(canvas.WithPageObserver(p.Collector.ObservePages)),
		html,
		receipt.New(),
	}

	var printer *browser.Writer
	if p.Config.Chrome.Enabled {
		printer = browser.New(browser.Config{
			RemoteURL: p.Config.Chrome.RemoteURL,
			NoSandbox: p.Config.Chrome.NoSandbox,
			Timeout:   p.Config.Chrome.Timeout,
		}, html, p.Log.Named("invoice.browser"))
		backends = append(backends, printer)

		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return printer.Close()
			},
		})
	}

	registry := render.NewRegistry(backends...)
	if printer == nil {
		registry.Disable(render.BackendBrowser)
	}
	return registry
}
