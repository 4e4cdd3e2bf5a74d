package service

import (
	"context"
	"errors"
	"testing"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	publicinvoicedomain "github.com/smallbiznis/invoicedesk/internal/publicinvoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDocuments struct {
	invoicedomain.DocumentService

	bundle   invoicedomain.Bundle
	err      error
	rendered []invoicedomain.DocumentRequest
}

func (f *fakeDocuments) LoadByToken(context.Context, string) (invoicedomain.Bundle, error) {
	return f.bundle, f.err
}

func (f *fakeDocuments) PublicView(_ context.Context, _ string, numberFormat string) (invoicedomain.PublicView, error) {
	if f.err != nil {
		return invoicedomain.PublicView{}, f.err
	}
	return invoicedomain.PublicView{Invoice: f.bundle.Invoice, NumberFormat: numberFormat}, nil
}

func (f *fakeDocuments) Render(_ context.Context, _ invoicedomain.Bundle, req invoicedomain.DocumentRequest) (invoicedomain.Document, error) {
	f.rendered = append(f.rendered, req)
	return invoicedomain.Document{Filename: "invoice.pdf", ContentType: render.ContentTypePDF, Body: []byte("%PDF-")}, nil
}

func newService(docs *fakeDocuments) publicinvoicedomain.Service {
	return New(Params{Log: zap.NewNop(), Documents: docs})
}

func withStatus(status invoicedomain.InvoiceStatus) *fakeDocuments {
	return &fakeDocuments{bundle: invoicedomain.Bundle{Invoice: invoicedomain.Invoice{Status: status}}}
}

func TestGetInvoiceForPublicView_Status(t *testing.T) {
	cases := map[invoicedomain.InvoiceStatus]publicinvoicedomain.PublicInvoiceStatus{
		invoicedomain.InvoiceStatusSent:      publicinvoicedomain.PublicInvoiceStatusUnpaid,
		invoicedomain.InvoiceStatusOverdue:   publicinvoicedomain.PublicInvoiceStatusOverdue,
		invoicedomain.InvoiceStatusPaid:      publicinvoicedomain.PublicInvoiceStatusPaid,
		invoicedomain.InvoiceStatusCancelled: publicinvoicedomain.PublicInvoiceStatusCancelled,
	}
	for status, want := range cases {
		resp, err := newService(withStatus(status)).GetInvoiceForPublicView(context.Background(), "tok", "de-DE")
		require.NoError(t, err, status)
		assert.Equal(t, want, resp.Status, status)
		assert.Equal(t, "de-DE", resp.NumberFormat)
	}
}

func TestGetInvoiceForPublicView_HidesDraftsAndMissing(t *testing.T) {
	_, err := newService(withStatus(invoicedomain.InvoiceStatusDraft)).GetInvoiceForPublicView(context.Background(), "tok", "")
	assert.ErrorIs(t, err, publicinvoicedomain.ErrInvoiceUnavailable)

	_, err = newService(&fakeDocuments{err: invoicedomain.ErrNotFound}).GetInvoiceForPublicView(context.Background(), "tok", "")
	assert.ErrorIs(t, err, publicinvoicedomain.ErrInvoiceUnavailable)

	boom := errors.New("db down")
	_, err = newService(&fakeDocuments{err: boom}).GetInvoiceForPublicView(context.Background(), "tok", "")
	assert.ErrorIs(t, err, boom)
}

func TestRenderDocument(t *testing.T) {
	docs := withStatus(invoicedomain.InvoiceStatusSent)
	svc := newService(docs)

	doc, err := svc.RenderDocument(context.Background(), "tok", invoicedomain.DocumentRequest{Engine: render.BackendFlow})
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", doc.Filename)
	assert.Equal(t, []invoicedomain.DocumentRequest{{Engine: render.BackendFlow}}, docs.rendered)

	_, err = svc.RenderDocument(context.Background(), "tok", invoicedomain.DocumentRequest{Engine: render.BackendBrowser})
	assert.ErrorIs(t, err, render.ErrBackendDisabled)

	_, err = newService(withStatus(invoicedomain.InvoiceStatusDraft)).RenderDocument(context.Background(), "tok", invoicedomain.DocumentRequest{})
	assert.ErrorIs(t, err, publicinvoicedomain.ErrInvoiceUnavailable)
}
