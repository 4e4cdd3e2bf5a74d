package render_test

import (
	"testing"

	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EndToEndTotals(t *testing.T) {
	layout := render.Build(rendertest.Input())

	assert.Equal(t, "Subtotal: $500.00", layout.Totals.Subtotal.String())
	require.NotNil(t, layout.Totals.Tax)
	assert.Equal(t, "VAT (8%): $40.00", layout.Totals.Tax.String())
	assert.Equal(t, "Total: $540.00", layout.Totals.Total.String())
	assert.Equal(t, "INVOICE", layout.Title.Heading)
	assert.Equal(t, "INV-000123", layout.Title.Number)
	assert.Equal(t, "SENT", layout.Title.Status)
	assert.Equal(t, "Mar 1, 2026", layout.Dates.Issue)
	assert.Equal(t, "Mar 31, 2026", layout.Dates.Due)
	assert.Equal(t, "Brand refresh", layout.Project)
}

func TestBuild_TaxLineOmittedWithoutRate(t *testing.T) {
	in := rendertest.Input()
	in.Invoice.TaxRate = decimal.Zero
	assert.Nil(t, render.Build(in).Totals.Tax)

	in = rendertest.Input()
	in.Invoice.TaxName = ""
	assert.Equal(t, "Tax (8%)", render.Build(in).Totals.Tax.Label)

	in = rendertest.Input()
	in.Invoice.TaxRate = decimal.RequireFromString("7.500")
	assert.Equal(t, "VAT (7.5%)", render.Build(in).Totals.Tax.Label)
}

func TestBuild_ColumnVisibility(t *testing.T) {
	in := rendertest.Input()
	in.Invoice.ShowRateColumn = false
	table := render.Build(in).Table

	kinds := make([]render.ColumnKind, 0, len(table.Columns))
	for _, col := range table.Columns {
		kinds = append(kinds, col.Kind)
	}
	assert.Equal(t, []render.ColumnKind{render.ColumnDescription, render.ColumnQuantity, render.ColumnAmount}, kinds)
	assert.Equal(t, []string{"Design", "10", "$500.00"}, table.Rows[0].Cells)
	assert.Equal(t, 2, table.AmountIndex())

	in.Invoice.ShowItemColumn = false
	in.Invoice.ShowQuantityColumn = false
	table = render.Build(in).Table
	require.Len(t, table.Columns, 1)
	assert.Equal(t, render.ColumnAmount, table.Columns[0].Kind)
}

func TestBuild_EmptyBusinessInfo(t *testing.T) {
	in := rendertest.Input()
	in.Business = companydomain.BusinessInfo{}
	header := render.Build(in).Header

	assert.Equal(t, render.Header{}, header)
}

func TestBuild_ContactJoinsPresentParts(t *testing.T) {
	in := rendertest.Input()
	in.Business.Phone = ""
	assert.Equal(t, "billing@acme.test", render.Build(in).Header.Contact)

	in = rendertest.Input()
	assert.Equal(t, "billing@acme.test | +1 555-0100", render.Build(in).Header.Contact)
	assert.Equal(t, []string{"1 Loop", "Cupertino, CA 95014"}, render.Build(in).Header.AddressLines)
}

func TestBuild_BillTo(t *testing.T) {
	in := rendertest.Input()
	bill := render.Build(in).BillTo
	assert.Equal(t, "Ada Lovelace", bill.Name)
	assert.Equal(t, "Analytical Engines Ltd", bill.Company)
	assert.Equal(t, []string{"12 St James's Sq", "London, SW1Y 4LB", "UK"}, bill.AddressLines)

	in.Client.FirstName, in.Client.LastName = "", ""
	bill = render.Build(in).BillTo
	assert.Equal(t, "Analytical Engines Ltd", bill.Name)
	assert.Empty(t, bill.Company)
}

func TestMoneyFormatter_Grouping(t *testing.T) {
	amount := decimal.RequireFromString("1234567.5")

	assert.Equal(t, "$1,234,567.50", render.NewMoneyFormatter("$", "en-US").Format(amount))
	assert.Equal(t, "€1.234.567,50", render.NewMoneyFormatter("€", "de-DE").Format(amount))
	assert.Equal(t, "$0.00", render.NewMoneyFormatter("", "not a tag!").Format(decimal.Zero))
}
