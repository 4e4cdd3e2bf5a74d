// Package rendertest provides invoice fixtures shared by the document backend tests.
package rendertest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/calc"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"github.com/smallbiznis/invoicedesk/internal/postal"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"gorm.io/datatypes"
)

// Input returns the INV-000123 scenario: one 10 × 50 design item taxed at 8% VAT.
func Input() render.Input {
	items := []invoicedomain.LineItem{{
		Description: "Design",
		Quantity:    decimal.NewFromInt(10),
		Rate:        decimal.NewFromInt(50),
		Amount:      decimal.NewFromInt(500),
	}}
	return WithItems(items)
}

// WithItems builds the standard fixture around items, recomputing totals.
func WithItems(items []invoicedomain.LineItem) render.Input {
	taxRate := decimal.NewFromInt(8)
	totals := calc.Compute(items, taxRate)

	return render.Input{
		Invoice: invoicedomain.Invoice{
			ID:                 1001,
			OwnerID:            1,
			InvoiceNumber:      "INV-000123",
			Status:             invoicedomain.InvoiceStatusSent,
			IssueDate:          datatypes.Date(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			DueDate:            datatypes.Date(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
			ClientID:           2001,
			LineItems:          datatypes.JSONSlice[invoicedomain.LineItem](items),
			Subtotal:           totals.Subtotal,
			TaxRate:            taxRate,
			TaxName:            "VAT",
			TaxAmount:          totals.TaxAmount,
			Total:              totals.Total,
			ShowItemColumn:     true,
			ShowQuantityColumn: true,
			ShowRateColumn:     true,
			Notes:              "Thank you for your business.",
			PaymentTerms:       "Net 30",
		},
		Client: clientdomain.Client{
			ID:        2001,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Company:   "Analytical Engines Ltd",
			Email:     "ada@example.com",
			Address:   postal.Address{Street: "12 St James's Sq", City: "London", Zip: "SW1Y 4LB", Country: "UK"},
		},
		Project: &projectdomain.Project{ID: 3001, Name: "Brand refresh"},
		Business: companydomain.BusinessInfo{
			Name:    "Acme Studio",
			Address: "1 Loop\nCupertino, CA 95014",
			Email:   "billing@acme.test",
			Phone:   "+1 555-0100",
		},
		CurrencySymbol: "$",
		NumberFormat:   "en-US",
		Footer:         "Acme Studio, registered in California",
	}
}

// Items returns n one-hour line items.
func Items(n int) []invoicedomain.LineItem {
	items := make([]invoicedomain.LineItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, invoicedomain.LineItem{
			Description: fmt.Sprintf("Consulting hour %d", i),
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(100),
			Amount:      decimal.NewFromInt(100),
		})
	}
	return items
}
