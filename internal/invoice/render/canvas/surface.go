// Package canvas draws an invoice layout onto an A4 page with absolute
// millimetre coordinates and explicit page breaks.
package canvas

import (
	_ "embed"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Style is the pen used for a single draw call.
type Style struct {
	Bold bool
	Size float64
}

var (
	styleBody   = Style{Size: 10}
	styleLabel  = Style{Bold: true, Size: 10}
	styleName   = Style{Bold: true, Size: 18}
	styleTitle  = Style{Bold: true, Size: 20}
	styleNumber = Style{Size: 12}
	styleBillTo = Style{Bold: true, Size: 12}
	styleClient = Style{Bold: true, Size: 11}
	styleTotal  = Style{Bold: true, Size: 12}
)

// Surface is the drawing target. Text places s with its baseline at y;
// for AlignRight x is the right edge, for AlignCenter the midpoint.
type Surface interface {
	AddPage()
	Text(x, y float64, s string, style Style, align Align)
	SplitText(s string, width float64, style Style) []string
	PageCount() int
	Output(w io.Writer) error
}

// DejaVu covers Latin, Greek and Cyrillic. gofpdf keeps UTF-8 glyph widths
// for the Basic Multilingual Plane only.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const fontFamily = "DejaVu"

type pdfSurface struct {
	pdf *gofpdf.Fpdf
}

// NewPDFSurface returns an A4 portrait surface whose document dates are
// pinned to stamp so identical input yields identical bytes.
func NewPDFSurface(stamp time.Time) Surface {
	return newPDFSurface(stamp, true)
}

func newPDFSurface(stamp time.Time, compress bool) *pdfSurface {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTextColor(17, 24, 39)
	pdf.AddPage()

	return &pdfSurface{pdf: pdf}
}

func (s *pdfSurface) AddPage() { s.pdf.AddPage() }

func (s *pdfSurface) Text(x, y float64, text string, style Style, align Align) {
	if text == "" {
		return
	}
	s.setStyle(style)
	text = planeSafe(text)
	switch align {
	case AlignRight:
		x -= s.pdf.GetStringWidth(text)
	case AlignCenter:
		x -= s.pdf.GetStringWidth(text) / 2
	}
	s.pdf.Text(x, y, text)
}

func (s *pdfSurface) SplitText(text string, width float64, style Style) []string {
	s.setStyle(style)
	return s.pdf.SplitText(planeSafe(text), width)
}

func (s *pdfSurface) PageCount() int { return s.pdf.PageCount() }

func (s *pdfSurface) Output(w io.Writer) error {
	return s.pdf.Output(w)
}

func (s *pdfSurface) setStyle(style Style) {
	weight := ""
	if style.Bold {
		weight = "B"
	}
	s.pdf.SetFont(fontFamily, weight, style.Size)
}

// planeSafe repairs invalid UTF-8 and replaces runes outside the Basic
// Multilingual Plane, which the font width table cannot index, with U+FFFD.
func planeSafe(text string) string {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	if !strings.ContainsFunc(text, func(r rune) bool { return r > 0xFFFF }) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, text)
}
