// Package receipt renders payment receipts for paid invoices on a maroto grid.
package receipt

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
)

const (
	gridSize     = 12
	charsPerLine = 100
)

var fixedSpans = map[render.ColumnKind]int{
	render.ColumnQuantity: 2,
	render.ColumnRate:     2,
	render.ColumnAmount:   3,
}

// Writer renders receipts. Layouts without a payment date are rejected.
type Writer struct{}

func New() *Writer { return &Writer{} }

var _ render.Backend = (*Writer)(nil)

func (w *Writer) Name() string        { return render.BackendReceipt }
func (w *Writer) ContentType() string { return render.ContentTypePDF }
func (w *Writer) Extension() string   { return "pdf" }

func (w *Writer) Render(ctx context.Context, layout render.Layout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layout.PaidOn == "" {
		return nil, render.ErrNotPaid
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		WithCreationDate(layout.IssuedAt).
		Build()

	m := maroto.New(cfg)
	m.AddRows(buildRows(layout)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate receipt: %w", err)
	}
	return doc.GetBytes(), nil
}

func buildRows(layout render.Layout) []core.Row {
	bold := props.Text{Style: fontstyle.Bold, Size: 9}
	plain := props.Text{Size: 9}
	right := props.Text{Size: 9, Align: align.Right}

	rows := []core.Row{
		row.New(20).Add(
			text.NewCol(6, layout.Header.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
			text.NewCol(6, "PAID", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Right, Color: &props.Color{Red: 4, Green: 120, Blue: 87}}),
		),
		row.New(18).Add(
			col.New(6).Add(
				text.New("Receipt for "+layout.Title.Number, props.Text{Top: 0, Size: 9}),
				text.New(render.LabelPaid+": "+layout.PaidOn, props.Text{Top: 4, Size: 9}),
				text.New(render.LabelIssueDate+": "+layout.Dates.Issue, props.Text{Top: 8, Size: 9}),
			),
			col.New(6).Add(partyLines(layout.Header.AddressLines, layout.Header.Contact)...),
		),
	}

	billTo := []core.Component{text.New(render.LabelBillTo, bold)}
	top := 4.0
	for _, line := range billToLines(layout.BillTo) {
		billTo = append(billTo, text.New(line, props.Text{Top: top, Size: 9}))
		top += 4
	}
	rows = append(rows, row.New(top+4).Add(col.New(12).Add(billTo...)))

	if layout.Project != "" {
		rows = append(rows, text.NewRow(8, render.LabelProject+": "+layout.Project, plain))
	}

	spans := columnSpans(layout.Table.Columns)
	header := row.New(10)
	for i, c := range layout.Table.Columns {
		p := bold
		if c.Kind != render.ColumnDescription {
			p.Align = align.Right
		}
		header.Add(text.NewCol(spans[i], c.Title, p))
	}
	rows = append(rows, header)

	for _, r := range layout.Table.Rows {
		line := row.New(8)
		for i, cell := range r.Cells {
			p := plain
			if layout.Table.Columns[i].Kind != render.ColumnDescription {
				p = right
			}
			line.Add(text.NewCol(spans[i], cell, p))
		}
		rows = append(rows, line)
	}

	totals := []render.Line{layout.Totals.Subtotal}
	if layout.Totals.Tax != nil {
		totals = append(totals, *layout.Totals.Tax)
	}
	for _, t := range totals {
		rows = append(rows, row.New(7).Add(
			col.New(6),
			text.NewCol(3, t.Label+":", plain),
			text.NewCol(3, t.Value, right),
		))
	}
	rows = append(rows, row.New(10).Add(
		col.New(6),
		text.NewCol(3, layout.Totals.Total.Label+":", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(3, layout.Totals.Total.Value, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	))

	if layout.Notes != "" {
		rows = append(rows, text.NewRow(9, render.LabelNotes+":", props.Text{Size: 9, Top: 4, Style: fontstyle.Bold}))
		for _, paragraph := range noteParagraphs(layout.Notes) {
			rows = append(rows, text.NewRow(paragraphHeight(paragraph), paragraph, plain))
		}
	}
	if layout.PaymentTerms != "" {
		rows = append(rows, text.NewRow(12, render.LabelPaymentTerms+": "+layout.PaymentTerms, props.Text{Size: 9, Top: 4}))
	}
	if layout.Footer != "" {
		rows = append(rows, text.NewRow(12, layout.Footer, props.Text{Size: 8, Top: 4, Align: align.Center}))
	}
	return rows
}

// noteParagraphs splits notes on authored line breaks.
func noteParagraphs(notes string) []string {
	var out []string
	for _, p := range strings.Split(notes, "\n") {
		out = append(out, strings.TrimRight(p, " \r\t"))
	}
	return out
}

// paragraphHeight reserves one 5mm line per charsPerLine runes of a
// full-width 9pt paragraph.
func paragraphHeight(paragraph string) float64 {
	lines := (len([]rune(paragraph)) + charsPerLine - 1) / charsPerLine
	return float64(max(lines, 1)) * 5
}

// columnSpans gives fixed grid spans to numeric columns and the remainder
// to the description.
func columnSpans(cols []render.Column) []int {
	spans := make([]int, len(cols))
	used := 0
	description := -1
	for i, c := range cols {
		if c.Kind == render.ColumnDescription {
			description = i
			continue
		}
		spans[i] = fixedSpans[c.Kind]
		used += spans[i]
	}
	if description >= 0 {
		spans[description] = gridSize - used
	} else if len(cols) > 0 {
		spans[len(cols)-1] += gridSize - used
	}
	return spans
}

func partyLines(address []string, contact string) []core.Component {
	lines := append([]string{}, address...)
	if contact != "" {
		lines = append(lines, contact)
	}
	out := make([]core.Component, 0, len(lines))
	for i, line := range lines {
		out = append(out, text.New(line, props.Text{Top: float64(i) * 4, Size: 9, Align: align.Right}))
	}
	return out
}

func billToLines(b render.BillTo) []string {
	lines := []string{b.Name}
	for _, v := range []string{b.Company, b.Email, strings.Join(b.AddressLines, ", ")} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	return lines
}
