package canvas

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
)

// Page geometry in millimetres.
const (
	marginLeft   = 20.0
	rightEdge    = 190.0
	amountRight  = 175.0
	pageCenter   = 105.0
	pageTop      = 20.0
	pageBreakAt  = 270.0
	lineHeight   = 5.0
	rowHeight    = 7.0
	billToMinY   = 50.0
	tableMinY    = 120.0
	dateLabelX   = 130.0
	dateValueX   = 160.0
	totalsLabelX = 130.0
	clientWrap   = 90.0
	textWrap     = 170.0

	// The date column sits at fixed offsets from the Bill To baseline and
	// does not follow the client block.
	dueDateY      = billToMinY + 6
	dateColumnEnd = billToMinY + 11

	descriptionMax  = 45
	descriptionKeep = 42
)

var columnWidths = map[render.ColumnKind]float64{
	render.ColumnDescription: 85,
	render.ColumnQuantity:    20,
	render.ColumnRate:        30,
}

type Option func(*Writer)

// WithPageObserver reports the page count of every rendered document.
func WithPageObserver(fn func(pages int)) Option {
	return func(w *Writer) { w.observePages = fn }
}

// Writer renders layouts to PDF through gofpdf.
type Writer struct {
	newSurface   func(stamp time.Time) Surface
	observePages func(int)
}

func New(opts ...Option) *Writer {
	w := &Writer{newSurface: NewPDFSurface}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ render.Backend = (*Writer)(nil)

func (w *Writer) Name() string        { return render.BackendCanvas }
func (w *Writer) ContentType() string { return render.ContentTypePDF }
func (w *Writer) Extension() string   { return "pdf" }

func (w *Writer) Render(ctx context.Context, layout render.Layout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	surface := w.newSurface(layout.IssuedAt)
	Draw(surface, layout)

	var buf bytes.Buffer
	if err := surface.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	if w.observePages != nil {
		w.observePages(surface.PageCount())
	}
	return buf.Bytes(), nil
}

// pen tracks the vertical cursor while drawing top to bottom.
type pen struct {
	s Surface
	y float64
}

// breakIfFull starts a new page once the cursor has passed the bottom limit.
func (p *pen) breakIfFull() {
	if p.y > pageBreakAt {
		p.s.AddPage()
		p.y = pageTop
	}
}

// Draw lays out one invoice on s, starting on its current page.
func Draw(s Surface, layout render.Layout) {
	p := &pen{s: s, y: pageTop}

	drawHeader(p, layout.Header)
	drawTitle(s, layout.Title)
	datesEnd := drawParties(p, layout.BillTo, layout.Dates)
	if layout.Project != "" {
		p.y = max(p.y, datesEnd)
		s.Text(marginLeft, p.y, render.LabelProject+": "+layout.Project, styleBody, AlignLeft)
		p.y += lineHeight + 1
	}
	drawTable(p, layout.Table)
	drawTotals(p, layout.Totals)
	if layout.PaidOn != "" {
		p.breakIfFull()
		p.s.Text(totalsLabelX, p.y, render.LabelPaid+": "+layout.PaidOn, styleLabel, AlignLeft)
		p.y += rowHeight
	}
	drawSection(p, render.LabelNotes, layout.Notes)
	drawSection(p, render.LabelPaymentTerms, layout.PaymentTerms)
	drawFooter(p, layout.Footer)
}

func drawHeader(p *pen, h render.Header) {
	if h.Name != "" {
		p.s.Text(marginLeft, p.y, h.Name, styleName, AlignLeft)
		p.y += 8
	}
	for _, line := range h.AddressLines {
		p.s.Text(marginLeft, p.y, line, styleBody, AlignLeft)
		p.y += lineHeight
	}
	if h.Contact != "" {
		p.s.Text(marginLeft, p.y, h.Contact, styleBody, AlignLeft)
		p.y += lineHeight
	}
}

func drawTitle(s Surface, t render.Title) {
	s.Text(rightEdge, 20, t.Heading, styleTitle, AlignRight)
	s.Text(rightEdge, 28, t.Number, styleNumber, AlignRight)
	s.Text(rightEdge, 35, t.Status, styleBody, AlignRight)
}

// drawParties draws the Bill To block and the date column and returns the
// bottom of the date column.
func drawParties(p *pen, bill render.BillTo, dates render.Dates) float64 {
	p.y = max(p.y, billToMinY)
	top := p.y

	p.s.Text(marginLeft, top, render.LabelBillTo+":", styleBillTo, AlignLeft)
	p.s.Text(dateLabelX, top, render.LabelIssueDate+":", styleLabel, AlignLeft)
	p.s.Text(dateValueX, top, dates.Issue, styleBody, AlignLeft)
	p.y += 6

	p.s.Text(marginLeft, p.y, bill.Name, styleClient, AlignLeft)
	p.y += lineHeight
	if bill.Company != "" {
		p.s.Text(marginLeft, p.y, bill.Company, styleBody, AlignLeft)
		p.y += lineHeight
	}
	if bill.Email != "" {
		p.s.Text(marginLeft, p.y, bill.Email, styleBody, AlignLeft)
		p.y += lineHeight
	}
	for _, line := range bill.AddressLines {
		for _, wrapped := range p.s.SplitText(line, clientWrap, styleBody) {
			p.s.Text(marginLeft, p.y, wrapped, styleBody, AlignLeft)
			p.y += lineHeight
		}
	}

	p.s.Text(dateLabelX, dueDateY, render.LabelDueDate+":", styleLabel, AlignLeft)
	p.s.Text(dateValueX, dueDateY, dates.Due, styleBody, AlignLeft)
	return dateColumnEnd
}

func drawTable(p *pen, table render.Table) {
	p.y = max(p.y, tableMinY)

	xs := columnPositions(table.Columns)
	last := table.AmountIndex()
	for i, col := range table.Columns {
		if i == last {
			p.s.Text(amountRight, p.y, col.Title, styleLabel, AlignRight)
			continue
		}
		p.s.Text(xs[i], p.y, col.Title, styleLabel, AlignLeft)
	}
	p.y += rowHeight

	for _, row := range table.Rows {
		p.breakIfFull()
		for i, cell := range row.Cells {
			if i == last {
				p.s.Text(amountRight, p.y, cell, styleBody, AlignRight)
				continue
			}
			if table.Columns[i].Kind == render.ColumnDescription {
				cell = truncateDescription(cell)
			}
			p.s.Text(xs[i], p.y, cell, styleBody, AlignLeft)
		}
		p.y += rowHeight
	}
}

// columnPositions returns the left edge of each non-amount column, packed
// left to right from the margin. The amount column has no left edge.
func columnPositions(cols []render.Column) []float64 {
	xs := make([]float64, len(cols))
	x := marginLeft
	for i, col := range cols {
		if col.Kind == render.ColumnAmount {
			xs[i] = amountRight
			continue
		}
		xs[i] = x
		x += columnWidths[col.Kind]
	}
	return xs
}

func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionMax {
		return s
	}
	return string(runes[:descriptionKeep]) + "…"
}

func drawTotals(p *pen, totals render.Totals) {
	p.y += lineHeight
	lines := []render.Line{totals.Subtotal}
	if totals.Tax != nil {
		lines = append(lines, *totals.Tax)
	}
	for _, line := range lines {
		p.s.Text(totalsLabelX, p.y, line.Label+":", styleBody, AlignLeft)
		p.s.Text(amountRight, p.y, line.Value, styleBody, AlignRight)
		p.y += rowHeight
	}
	p.s.Text(totalsLabelX, p.y, totals.Total.Label+":", styleTotal, AlignLeft)
	p.s.Text(amountRight, p.y, totals.Total.Value, styleTotal, AlignRight)
	p.y += 10
}

func drawSection(p *pen, label, body string) {
	if body == "" {
		return
	}
	p.breakIfFull()
	p.s.Text(marginLeft, p.y, label+":", styleLabel, AlignLeft)
	p.y += lineHeight
	for _, line := range wrap(p.s, body, textWrap) {
		p.breakIfFull()
		p.s.Text(marginLeft, p.y, line, styleBody, AlignLeft)
		p.y += lineHeight
	}
	p.y += lineHeight
}

func drawFooter(p *pen, footer string) {
	if footer == "" {
		return
	}
	p.y += lineHeight
	for _, line := range wrap(p.s, footer, textWrap) {
		p.breakIfFull()
		p.s.Text(pageCenter, p.y, line, styleBody, AlignCenter)
		p.y += lineHeight
	}
}

// wrap keeps authored line breaks and wraps each paragraph to width.
func wrap(s Surface, text string, width float64) []string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimRight(paragraph, " \r\t")
		if paragraph == "" {
			out = append(out, "")
			continue
		}
		out = append(out, s.SplitText(paragraph, width, styleBody)...)
	}
	return out
}
