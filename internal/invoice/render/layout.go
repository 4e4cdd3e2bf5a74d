// Package render turns an invoice and its related records into a single
// layout description that every document backend draws from.
package render

import (
	"strings"
	"time"

	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"gorm.io/datatypes"
)

const (
	DefaultNumberFormat = "en-US"
	DefaultDateLayout   = "Jan 2, 2006"
)

// Input is everything a document needs, already loaded.
type Input struct {
	Invoice        invoicedomain.Invoice
	Client         clientdomain.Client
	Project        *projectdomain.Project
	Business       companydomain.BusinessInfo
	CurrencySymbol string
	// NumberFormat is a BCP-47 tag driving digit grouping, e.g. "de-DE".
	NumberFormat string
	DateLayout   string
	Footer       string
}

type ColumnKind string

const (
	ColumnDescription ColumnKind = "description"
	ColumnQuantity    ColumnKind = "quantity"
	ColumnRate        ColumnKind = "rate"
	ColumnAmount      ColumnKind = "amount"
)

type Column struct {
	Kind  ColumnKind
	Title string
}

// Row holds one cell per visible column, in column order.
type Row struct {
	Cells []string
}

type Header struct {
	Name         string
	LogoURL      string
	AddressLines []string
	// Contact is "email | phone" with empty parts dropped.
	Contact string
}

type Title struct {
	Heading string
	Number  string
	Status  string
}

type BillTo struct {
	Name         string
	Company      string
	Email        string
	AddressLines []string
}

type Dates struct {
	Issue string
	Due   string
}

type Table struct {
	Columns []Column
	Rows    []Row
}

// AmountIndex is the position of the amount column, always the last one.
func (t Table) AmountIndex() int { return len(t.Columns) - 1 }

type Line struct {
	Label string
	Value string
}

func (l Line) String() string { return l.Label + ": " + l.Value }

type Totals struct {
	Subtotal Line
	// Tax is nil when the invoice carries no tax.
	Tax   *Line
	Total Line
}

// Layout is the backend-neutral description of an invoice document.
type Layout struct {
	Header       Header
	Title        Title
	BillTo       BillTo
	Dates        Dates
	Project      string
	Table        Table
	Totals       Totals
	Notes        string
	PaymentTerms string
	Footer       string
	// PaidOn is set for paid invoices that record a payment date.
	PaidOn string

	// IssuedAt pins document metadata so output is reproducible.
	IssuedAt time.Time
}

const (
	LabelBillTo       = "Bill To"
	LabelIssueDate    = "Issue Date"
	LabelDueDate      = "Due Date"
	LabelProject      = "Project"
	LabelSubtotal     = "Subtotal"
	LabelTax          = "Tax"
	LabelTotal        = "Total"
	LabelNotes        = "Notes"
	LabelPaymentTerms = "Payment Terms"
	LabelPaid         = "Paid"
	invoiceHeading    = "INVOICE"
)

// Build applies every conditional rule of the document once.
func Build(in Input) Layout {
	money := NewMoneyFormatter(in.CurrencySymbol, in.NumberFormat)
	dateLayout := strings.TrimSpace(in.DateLayout)
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	inv := in.Invoice

	layout := Layout{
		Header: Header{
			Name:         strings.TrimSpace(in.Business.Name),
			LogoURL:      strings.TrimSpace(in.Business.LogoURL),
			AddressLines: splitLines(in.Business.Address),
			Contact:      joinNonEmpty(" | ", in.Business.Email, in.Business.Phone),
		},
		Title: Title{
			Heading: invoiceHeading,
			Number:  inv.InvoiceNumber,
			Status:  strings.ToUpper(string(inv.Status)),
		},
		BillTo: buildBillTo(in.Client),
		Dates: Dates{
			Issue: formatDate(inv.IssueDate, dateLayout),
			Due:   formatDate(inv.DueDate, dateLayout),
		},
		Table:        buildTable(inv, money),
		Totals:       buildTotals(inv, money),
		Notes:        strings.TrimSpace(inv.Notes),
		PaymentTerms: strings.TrimSpace(inv.PaymentTerms),
		Footer:       strings.TrimSpace(in.Footer),
		IssuedAt:     time.Time(inv.IssueDate).UTC(),
	}
	if in.Project != nil {
		layout.Project = strings.TrimSpace(in.Project.Name)
	}
	if inv.Status == invoicedomain.InvoiceStatusPaid && inv.PaidAt != nil {
		layout.PaidOn = inv.PaidAt.UTC().Format(dateLayout)
	}
	return layout
}

func buildBillTo(c clientdomain.Client) BillTo {
	name := c.DisplayName()
	bill := BillTo{
		Name:         name,
		Email:        strings.TrimSpace(c.Email),
		AddressLines: c.Address.Lines(),
	}
	if company := strings.TrimSpace(c.Company); company != "" && company != name {
		bill.Company = company
	}
	return bill
}

func buildTable(inv invoicedomain.Invoice, money MoneyFormatter) Table {
	var table Table
	if inv.ShowItemColumn {
		table.Columns = append(table.Columns, Column{Kind: ColumnDescription, Title: "Description"})
	}
	if inv.ShowQuantityColumn {
		table.Columns = append(table.Columns, Column{Kind: ColumnQuantity, Title: "Qty"})
	}
	if inv.ShowRateColumn {
		table.Columns = append(table.Columns, Column{Kind: ColumnRate, Title: "Rate"})
	}
	table.Columns = append(table.Columns, Column{Kind: ColumnAmount, Title: "Amount"})

	for _, item := range inv.Items() {
		cells := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			switch col.Kind {
			case ColumnDescription:
				cells = append(cells, item.Description)
			case ColumnQuantity:
				cells = append(cells, item.Quantity.String())
			case ColumnRate:
				cells = append(cells, money.Format(item.Rate))
			case ColumnAmount:
				cells = append(cells, money.Format(item.Amount))
			}
		}
		table.Rows = append(table.Rows, Row{Cells: cells})
	}
	return table
}

func buildTotals(inv invoicedomain.Invoice, money MoneyFormatter) Totals {
	totals := Totals{
		Subtotal: Line{Label: LabelSubtotal, Value: money.Format(inv.Subtotal)},
		Total:    Line{Label: LabelTotal, Value: money.Format(inv.Total)},
	}
	if inv.TaxRate.IsPositive() {
		name := strings.TrimSpace(inv.TaxName)
		if name == "" {
			name = LabelTax
		}
		totals.Tax = &Line{
			Label: name + " (" + inv.TaxRate.String() + "%)",
			Value: money.Format(inv.TaxAmount),
		}
	}
	return totals
}

func formatDate(d datatypes.Date, layout string) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
