package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "idk_live_****f00d", MaskSecret("idk_live_0123456789abcdef00d"))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****wxyz", MaskSecret("abcdwxyz"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j****@acme.example", MaskEmail("jane@acme.example"))
	assert.Equal(t, "****", MaskEmail("@x"))
}

func TestRedact(t *testing.T) {
	redacted := Redact(map[string]any{
		"public_token":   "tok_abcdefgh",
		"recipient":      "jane@acme.example",
		"invoice_number": "INV-000123",
		"count":          3,
		"nested":         map[string]any{"api_key": "idk_live_abcdefgh"},
		"":               "dropped",
	})

	assert.Equal(t, map[string]any{
		"public_token":   "tok_****efgh",
		"recipient":      "j****@acme.example",
		"invoice_number": "INV-000123",
		"count":          3,
		"nested":         map[string]any{"api_key": "idk_live_****efgh"},
	}, redacted)
	assert.Empty(t, Redact(nil))
}
