package render

import (
	"context"
	"errors"
)

const (
	BackendCanvas  = "canvas"
	BackendFlow    = "flow"
	BackendReceipt = "receipt"
	BackendBrowser = "browser"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

var (
	ErrUnknownBackend  = errors.New("unknown_render_backend")
	ErrBackendDisabled = errors.New("render_backend_disabled")
	ErrNotPaid         = errors.New("invoice_not_paid")
)

// Backend draws a Layout into a concrete document format.
type Backend interface {
	Name() string
	ContentType() string
	Extension() string
	Render(ctx context.Context, layout Layout) ([]byte, error)
}
