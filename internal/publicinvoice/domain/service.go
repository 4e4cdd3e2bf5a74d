package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

type Service interface {
	GetInvoiceForPublicView(ctx context.Context, token, numberFormat string) (*PublicInvoiceResponse, error)
	// RenderDocument renders the invoice behind token; an empty engine
	// selects the canvas PDF.
	RenderDocument(ctx context.Context, token string, req invoicedomain.DocumentRequest) (invoicedomain.Document, error)
}

type PublicInvoiceStatus string

const (
	PublicInvoiceStatusUnpaid    PublicInvoiceStatus = "unpaid"
	PublicInvoiceStatusOverdue   PublicInvoiceStatus = "overdue"
	PublicInvoiceStatusPaid      PublicInvoiceStatus = "paid"
	PublicInvoiceStatusCancelled PublicInvoiceStatus = "cancelled"
)

type PublicInvoiceResponse struct {
	Status PublicInvoiceStatus `json:"status"`
	invoicedomain.PublicView
}

var (
	ErrInvoiceUnavailable = errors.New("invoice_unavailable")
)
