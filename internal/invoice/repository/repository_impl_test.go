package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newInvoice(status domain.InvoiceStatus) *domain.Invoice {
	day := datatypes.Date(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Invoice{
		ID:            7,
		OwnerID:       42,
		InvoiceNumber: "INV-000007",
		Status:        status,
		IssueDate:     day,
		DueDate:       day,
		ClientID:      9,
		LineItems: datatypes.JSONSlice[domain.LineItem]{{
			Description: "Design",
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(100),
			Amount:      decimal.NewFromInt(100),
		}},
		Subtotal:    decimal.NewFromInt(100),
		Total:       decimal.NewFromInt(100),
		Notes:       "original",
		PublicToken: "tok_7",
		PublicURL:   "https://invoices.example/i/tok_7",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestUpdate_EditableStatus(t *testing.T) {
	db := dbtest.Open(t, &domain.Invoice{})
	ctx := context.Background()
	r := Provide()

	require.NoError(t, r.Insert(ctx, db, newInvoice(domain.InvoiceStatusSent)))

	edit := newInvoice(domain.InvoiceStatusSent)
	edit.Notes = "revised"
	ok, err := r.Update(ctx, db, edit)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, db, 42, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "revised", got.Notes)
}

func TestUpdate_DoesNotOverwriteSettledInvoice(t *testing.T) {
	db := dbtest.Open(t, &domain.Invoice{})
	ctx := context.Background()
	r := Provide()

	require.NoError(t, r.Insert(ctx, db, newInvoice(domain.InvoiceStatusSent)))

	// The edit was loaded while the invoice was still sent.
	stale := newInvoice(domain.InvoiceStatusSent)

	paidAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	paid := newInvoice(domain.InvoiceStatusPaid)
	paid.PaidAt = &paidAt
	moved, err := r.UpdateStatus(ctx, db, paid, domain.InvoiceStatusSent)
	require.NoError(t, err)
	require.True(t, moved)

	stale.Notes = "revised"
	stale.Total = decimal.NewFromInt(1)
	ok, err := r.Update(ctx, db, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.FindByID(ctx, db, 42, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.InvoiceStatusPaid, got.Status)
	assert.Equal(t, "original", got.Notes)
	assert.Equal(t, "100.00", got.Total.StringFixed(2))
}
