package domain

import (
	"context"
	"errors"

	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
)

// DocumentRequest selects how an invoice is rendered. Empty fields fall
// back to the canvas engine and the configured number format.
type DocumentRequest struct {
	Engine       string `json:"engine"`
	NumberFormat string `json:"number_format"`
}

type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Bundle is everything a document needs, loaded before layout starts.
type Bundle struct {
	Invoice Invoice
	Client  clientdomain.Client
	Project *projectdomain.Project
	Sender  companydomain.Sender
}

// PublicView is the payload of the unauthenticated invoice page.
type PublicView struct {
	Invoice        Invoice                    `json:"invoice"`
	Client         clientdomain.Client        `json:"client"`
	Project        *projectdomain.Project     `json:"project"`
	BusinessInfo   companydomain.BusinessInfo `json:"business_info"`
	CurrencySymbol string                     `json:"currency_symbol"`
	NumberFormat   string                     `json:"number_format"`
}

type DocumentService interface {
	// Load reads the invoice of the owner in ctx together with its client,
	// project and sender. Any failure aborts the whole load.
	Load(ctx context.Context, id string) (Bundle, error)
	LoadByToken(ctx context.Context, token string) (Bundle, error)
	Render(ctx context.Context, bundle Bundle, req DocumentRequest) (Document, error)
	RenderInvoice(ctx context.Context, id string, req DocumentRequest) (Document, error)
	// Publish uploads doc to file storage and returns its URL.
	Publish(ctx context.Context, bundle Bundle, doc Document) (string, error)
	PublicView(ctx context.Context, token, numberFormat string) (PublicView, error)
}

var (
	ErrInvalidToken        = errors.New("invalid_public_token")
	ErrClientMissing       = errors.New("invoice_client_not_found")
	ErrProjectMissing      = errors.New("invoice_project_not_found")
	ErrInvalidNumberFormat = errors.New("invalid_number_format")
)
