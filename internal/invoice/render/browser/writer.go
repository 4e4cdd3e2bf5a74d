// Package browser prints the flow HTML of an invoice to PDF through a
// headless Chrome reached over the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second

	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

type Config struct {
	// RemoteURL points at a running Chrome; empty launches a local one.
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

// Writer renders the flow backend's HTML with Chrome.
type Writer struct {
	cfg  Config
	html render.Backend
	log  *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func New(cfg Config, html render.Backend, log *zap.Logger) *Writer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{cfg: cfg, html: html, log: log}
	w.initAllocator()
	return w
}

func (w *Writer) initAllocator() {
	if w.cfg.RemoteURL != "" {
		w.allocCtx, w.allocCancel = chromedp.NewRemoteAllocator(context.Background(), w.cfg.RemoteURL)
		return
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if w.cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	w.allocCtx, w.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

var _ render.Backend = (*Writer)(nil)

func (w *Writer) Name() string        { return render.BackendBrowser }
func (w *Writer) ContentType() string { return render.ContentTypePDF }
func (w *Writer) Extension() string   { return "pdf" }

func (w *Writer) Render(ctx context.Context, layout render.Layout) ([]byte, error) {
	document, err := w.html.Render(ctx, layout)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(w.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			w.log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Cancel the tab when the request context ends.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(document)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(mmToInches(a4WidthMM)).
				WithPaperHeight(mmToInches(a4HeightMM)).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("browser print timed out after %v: %w", w.cfg.Timeout, err)
		}
		w.log.Error("browser print failed", zap.Error(err))
		return nil, fmt.Errorf("browser print: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("browser print produced an empty document")
	}
	return pdf, nil
}

// Close releases the browser allocator.
func (w *Writer) Close() error {
	if w.allocCancel != nil {
		w.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
