package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
)

const DefaultInvoiceNumberTemplate = "INV-{SEQ6}"

// FormatInvoiceNumber renders template with the issue date and the owner's
// sequence. Supported tokens: {YYYY} {YY} {MM} {DD} {SEQ} {SEQn}.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := template

	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}

// Filename builds the download name for a rendered invoice, e.g.
// "invoice-inv-000123.pdf".
func Filename(prefix, invoiceNumber, ext string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "invoice"
	}
	name := slug.Make(prefix + " " + invoiceNumber)
	if name == "" {
		name = "invoice"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
