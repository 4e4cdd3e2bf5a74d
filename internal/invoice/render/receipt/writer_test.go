package receipt

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_RequiresPayment(t *testing.T) {
	_, err := New().Render(context.Background(), render.Build(rendertest.Input()))
	assert.ErrorIs(t, err, render.ErrNotPaid)
}

func TestRender_PaidInvoice(t *testing.T) {
	in := rendertest.Input()
	in.Invoice.Status = invoicedomain.InvoiceStatusPaid
	paidAt := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	in.Invoice.PaidAt = &paidAt

	out, err := New().Render(context.Background(), render.Build(in))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func paidLayout(notes string) render.Layout {
	in := rendertest.Input()
	in.Invoice.Status = invoicedomain.InvoiceStatusPaid
	paidAt := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	in.Invoice.PaidAt = &paidAt
	in.Invoice.Notes = notes
	return render.Build(in)
}

func TestBuildRows_IncludesNotes(t *testing.T) {
	without := buildRows(paidLayout(""))
	with := buildRows(paidLayout("Thanks for the prompt payment.\nSee you next quarter."))

	// One label row plus a row per paragraph.
	assert.Len(t, with, len(without)+3)

	out, err := New().Render(context.Background(), paidLayout("Thanks for the prompt payment."))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestNoteParagraphs(t *testing.T) {
	assert.Equal(t, []string{"first", "", "second"}, noteParagraphs("first  \r\n\nsecond"))
	assert.Equal(t, 5.0, paragraphHeight(""))
	assert.Equal(t, 5.0, paragraphHeight(strings.Repeat("a", charsPerLine)))
	assert.Equal(t, 10.0, paragraphHeight(strings.Repeat("é", charsPerLine+1)))
}

func TestColumnSpans(t *testing.T) {
	all := []render.Column{
		{Kind: render.ColumnDescription},
		{Kind: render.ColumnQuantity},
		{Kind: render.ColumnRate},
		{Kind: render.ColumnAmount},
	}
	assert.Equal(t, []int{5, 2, 2, 3}, columnSpans(all))
	assert.Equal(t, []int{7, 2, 3}, columnSpans([]render.Column{all[0], all[2], all[3]}))
	assert.Equal(t, []int{12}, columnSpans([]render.Column{all[3]}))
}
