package service

import (
	"context"
	"errors"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	publicinvoicedomain "github.com/smallbiznis/invoicedesk/internal/publicinvoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Documents invoicedomain.DocumentService
}

type Service struct {
	log       *zap.Logger
	documents invoicedomain.DocumentService
}

func New(p Params) publicinvoicedomain.Service {
	return &Service{
		log:       p.Log.Named("publicinvoice.service"),
		documents: p.Documents,
	}
}

func (s *Service) GetInvoiceForPublicView(ctx context.Context, token, numberFormat string) (*publicinvoicedomain.PublicInvoiceResponse, error) {
	view, err := s.documents.PublicView(ctx, token, numberFormat)
	if err != nil {
		return nil, unavailable(err)
	}
	if !isInvoiceViewable(view.Invoice.Status) {
		return nil, publicinvoicedomain.ErrInvoiceUnavailable
	}
	return &publicinvoicedomain.PublicInvoiceResponse{
		Status:     publicInvoiceStatus(view.Invoice.Status),
		PublicView: view,
	}, nil
}

func (s *Service) RenderDocument(ctx context.Context, token string, req invoicedomain.DocumentRequest) (invoicedomain.Document, error) {
	bundle, err := s.documents.LoadByToken(ctx, token)
	if err != nil {
		return invoicedomain.Document{}, unavailable(err)
	}
	if !isInvoiceViewable(bundle.Invoice.Status) {
		return invoicedomain.Document{}, publicinvoicedomain.ErrInvoiceUnavailable
	}
	if req.Engine == render.BackendBrowser {
		// Chrome is reserved for authenticated exports.
		return invoicedomain.Document{}, render.ErrBackendDisabled
	}
	return s.documents.Render(ctx, bundle, req)
}

// Drafts are not public until they have been sent.
func isInvoiceViewable(status invoicedomain.InvoiceStatus) bool {
	return status.Valid() && status != invoicedomain.InvoiceStatusDraft
}

func publicInvoiceStatus(status invoicedomain.InvoiceStatus) publicinvoicedomain.PublicInvoiceStatus {
	switch status {
	case invoicedomain.InvoiceStatusPaid:
		return publicinvoicedomain.PublicInvoiceStatusPaid
	case invoicedomain.InvoiceStatusOverdue:
		return publicinvoicedomain.PublicInvoiceStatusOverdue
	case invoicedomain.InvoiceStatusCancelled:
		return publicinvoicedomain.PublicInvoiceStatusCancelled
	default:
		return publicinvoicedomain.PublicInvoiceStatusUnpaid
	}
}

// unavailable hides whether a token never existed or its invoice lost a
// related record.
func unavailable(err error) error {
	switch {
	case errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvalidToken),
		errors.Is(err, invoicedomain.ErrClientMissing),
		errors.Is(err, invoicedomain.ErrProjectMissing):
		return publicinvoicedomain.ErrInvoiceUnavailable
	}
	return err
}
