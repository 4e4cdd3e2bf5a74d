// Package calc derives invoice totals from line items.
package calc

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is the minimal view of a line item the calculator needs.
type Item interface {
	LineAmount() decimal.Decimal
}

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Compute sums the stored item amounts as-is, applies taxRate (a percentage)
// and rounds the tax to cents.
func Compute[T Item](items []T, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineAmount())
	}
	tax := Round2(subtotal.Mul(taxRate).Div(hundred))
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// LineAmount is quantity × rate rounded to cents, used when an amount is
// not supplied on entry.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(rate))
}

// Round2 rounds half away from zero to two places.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Coerce turns arbitrary numeric input into a decimal. Anything that is not
// a finite number, or a string holding one, becomes zero.
func Coerce(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		return coerceString(v.String())
	case string:
		return coerceString(v)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func coerceString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NewFromFloat(f)
	}
	return d
}

// Number is a lenient JSON number: malformed input decodes to zero instead
// of failing the request.
type Number struct {
	decimal.Decimal
	Set bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.Set = true
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	if raw == nil {
		n.Set = false
	}
	n.Decimal = Coerce(raw)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}
