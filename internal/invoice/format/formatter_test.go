package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 123)
	require.NoError(t, err)
	assert.Equal(t, "INV-000123", got)

	got, err = FormatInvoiceNumber("{YYYY}{MM}{DD}-{SEQ}", issued, 7)
	require.NoError(t, err)
	assert.Equal(t, "20260205-7", got)

	got, err = FormatInvoiceNumber("{YY}/{SEQ3}", issued, 12345)
	require.NoError(t, err)
	assert.Equal(t, "26/12345", got)

	_, err = FormatInvoiceNumber("", issued, 1)
	assert.Error(t, err)
	_, err = FormatInvoiceNumber("INV-{SEQ}", issued, 0)
	assert.Error(t, err)
	_, err = FormatInvoiceNumber("INV-{CLIENT}", issued, 1)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice-inv-000123.pdf", Filename("invoice", "INV-000123", "pdf"))
	assert.Equal(t, "receipt-2026-07.pdf", Filename("Receipt", "2026/07", ".pdf"))
	assert.Equal(t, "invoice.html", Filename("", "", "html"))
}
