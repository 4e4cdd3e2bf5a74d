// Package flow renders an invoice layout as a print-ready HTML page. Text
// wrapping and pagination are left to the browser.
package flow

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"strings"

	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Title.Number}}</title>
  <style>
    @page { size: A4; margin: 20mm; }
    :root {
      --primary: {{.Accent}};
      --font: Helvetica, Arial, sans-serif;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: var(--font);
      color: #111827;
      font-size: 10pt;
      -webkit-font-smoothing: antialiased;
    }
    .invoice { max-width: 170mm; margin: 0 auto; }
    .header { display: flex; justify-content: space-between; align-items: flex-start; }
    .business-name { font-size: 18pt; font-weight: 700; margin: 0 0 4px; }
    .business-line { line-height: 1.5; }
    .logo { max-height: 40px; margin-bottom: 8px; }
    .title { text-align: right; }
    .title h1 { margin: 0; font-size: 20pt; font-weight: 700; color: var(--primary); }
    .title .number { font-size: 12pt; margin-top: 4px; }
    .title .status { margin-top: 4px; letter-spacing: 0.3px; }
    .parties { display: flex; justify-content: space-between; margin-top: 32px; }
    .bill-to { max-width: 90mm; }
    .label { font-weight: 700; }
    .bill-to .label { font-size: 12pt; margin-bottom: 4px; }
    .client-name { font-weight: 700; font-size: 11pt; }
    .dates { min-width: 60mm; }
    .dates div { display: flex; gap: 8px; line-height: 1.6; }
    .project { margin-top: 16px; }
    table { width: 100%; border-collapse: collapse; margin-top: 32px; }
    thead { display: table-row-group; }
    th { text-align: left; font-weight: 700; border-bottom: 1px solid #e5e7eb; padding: 6px 0; }
    td { padding: 6px 0; vertical-align: top; border-bottom: 1px solid #f3f4f6; }
    tr { page-break-inside: avoid; }
    .amount { text-align: right; }
    .totals { margin-left: auto; width: 75mm; margin-top: 16px; }
    .total-row { display: flex; justify-content: space-between; padding: 3px 0; }
    .total-final { font-weight: 700; font-size: 12pt; border-top: 1px solid #e5e7eb; margin-top: 4px; padding-top: 6px; }
    .paid { margin-top: 8px; font-weight: 700; color: #047857; }
    .section { margin-top: 24px; white-space: pre-wrap; }
    .footer { margin-top: 40px; text-align: center; white-space: pre-wrap; color: #4b5563; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        {{- if .Header.LogoURL}}<img class="logo" src="{{.Header.LogoURL}}" alt="{{.Header.Name}}">{{end}}
        {{- if .Header.Name}}<p class="business-name">{{.Header.Name}}</p>{{end}}
        {{- range .Header.AddressLines}}<div class="business-line">{{.}}</div>{{end}}
        {{- if .Header.Contact}}<div class="business-line">{{.Header.Contact}}</div>{{end}}
      </div>
      <div class="title">
        <h1>{{.Title.Heading}}</h1>
        <div class="number">{{.Title.Number}}</div>
        <div class="status">{{.Title.Status}}</div>
      </div>
    </div>

    <div class="parties">
      <div class="bill-to">
        <div class="label">{{.Labels.BillTo}}:</div>
        <div class="client-name">{{.BillTo.Name}}</div>
        {{- if .BillTo.Company}}<div>{{.BillTo.Company}}</div>{{end}}
        {{- if .BillTo.Email}}<div>{{.BillTo.Email}}</div>{{end}}
        {{- range .BillTo.AddressLines}}<div>{{.}}</div>{{end}}
      </div>
      <div class="dates">
        <div><span class="label">{{.Labels.IssueDate}}:</span><span>{{.Dates.Issue}}</span></div>
        <div><span class="label">{{.Labels.DueDate}}:</span><span>{{.Dates.Due}}</span></div>
      </div>
    </div>

    {{- if .Project}}
    <div class="project">{{.Labels.Project}}: {{.Project}}</div>
    {{- end}}

    <table>
      <thead>
        <tr>
          {{- range .Table.Columns}}
          <th{{if eq .Kind "amount"}} class="amount"{{end}}>{{.Title}}</th>
          {{- end}}
        </tr>
      </thead>
      <tbody>
        {{- range .Table.Rows}}
        <tr>
          {{- range $i, $cell := .Cells}}
          <td{{if eq $i $.AmountIndex}} class="amount"{{end}}>{{$cell}}</td>
          {{- end}}
        </tr>
        {{- end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row"><span>{{.Totals.Subtotal.Label}}:</span><span>{{.Totals.Subtotal.Value}}</span></div>
      {{- with .Totals.Tax}}
      <div class="total-row"><span>{{.Label}}:</span><span>{{.Value}}</span></div>
      {{- end}}
      <div class="total-row total-final"><span>{{.Totals.Total.Label}}:</span><span>{{.Totals.Total.Value}}</span></div>
      {{- if .PaidOn}}
      <div class="paid">{{.Labels.Paid}}: {{.PaidOn}}</div>
      {{- end}}
    </div>

    {{- if .Notes}}
    <div class="section"><div class="label">{{.Labels.Notes}}:</div>{{.Notes}}</div>
    {{- end}}
    {{- if .PaymentTerms}}
    <div class="section"><div class="label">{{.Labels.PaymentTerms}}:</div>{{.PaymentTerms}}</div>
    {{- end}}
    {{- if .Footer}}
    <div class="footer">{{.Footer}}</div>
    {{- end}}
  </div>
</body>
</html>
`

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultAccent = "#111827"

type labels struct {
	BillTo       string
	IssueDate    string
	DueDate      string
	Project      string
	Notes        string
	PaymentTerms string
	Paid         string
}

type view struct {
	render.Layout
	Labels      labels
	Accent      string
	AmountIndex int
}

// Writer renders layouts through html/template.
type Writer struct {
	tpl    *template.Template
	accent string
}

type Option func(*Writer)

// WithAccent sets the heading color; anything but a #rrggbb value is ignored.
func WithAccent(color string) Option {
	return func(w *Writer) { w.accent = sanitizeColor(color) }
}

func New(opts ...Option) *Writer {
	w := &Writer{
		tpl:    template.Must(template.New("invoice").Parse(invoiceHTMLTemplate)),
		accent: defaultAccent,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ render.Backend = (*Writer)(nil)

func (w *Writer) Name() string        { return render.BackendFlow }
func (w *Writer) ContentType() string { return render.ContentTypeHTML }
func (w *Writer) Extension() string   { return "html" }

func (w *Writer) Render(ctx context.Context, layout render.Layout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := view{
		Layout: layout,
		Labels: labels{
			BillTo:       render.LabelBillTo,
			IssueDate:    render.LabelIssueDate,
			DueDate:      render.LabelDueDate,
			Project:      render.LabelProject,
			Notes:        render.LabelNotes,
			PaymentTerms: render.LabelPaymentTerms,
			Paid:         render.LabelPaid,
		},
		Accent:      w.accent,
		AmountIndex: layout.Table.AmountIndex(),
	}

	var buf bytes.Buffer
	if err := w.tpl.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return defaultAccent
}
