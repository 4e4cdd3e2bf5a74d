package calc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct{ amount decimal.Decimal }

func (i item) LineAmount() decimal.Decimal { return i.amount }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_EndToEndScenario(t *testing.T) {
	totals := Compute([]item{{amount: d("500")}}, d("8"))
	assert.Equal(t, "500.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "40.00", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "540.00", totals.Total.StringFixed(2))
}

func TestCompute_TotalsAddUp(t *testing.T) {
	cases := []struct {
		amounts []string
		rate    string
	}{
		{amounts: nil, rate: "0"},
		{amounts: []string{"0.01"}, rate: "50"},
		{amounts: []string{"19.99", "5.01", "100"}, rate: "7.25"},
		{amounts: []string{"33.33", "33.33", "33.34"}, rate: "12.5"},
		{amounts: []string{"1234.56"}, rate: "100"},
	}

	for _, tc := range cases {
		items := make([]item, 0, len(tc.amounts))
		sum := decimal.Zero
		for _, a := range tc.amounts {
			items = append(items, item{amount: d(a)})
			sum = sum.Add(d(a))
		}
		rate := d(tc.rate)
		totals := Compute(items, rate)

		assert.True(t, totals.Subtotal.Equal(sum))
		assert.True(t, totals.TaxAmount.Equal(sum.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)))
		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.TaxAmount)))
	}
}

func TestCompute_HalfUpAtTaxStep(t *testing.T) {
	// 0.125 rounds up to 0.13.
	totals := Compute([]item{{amount: d("2.50")}}, d("5"))
	assert.Equal(t, "0.13", totals.TaxAmount.StringFixed(2))
}

func TestCompute_TrustsStoredAmount(t *testing.T) {
	totals := Compute([]item{{amount: d("99")}}, decimal.Zero)
	assert.Equal(t, "99", totals.Subtotal.String())
}

func TestLineAmount(t *testing.T) {
	assert.Equal(t, "500", LineAmount(d("10"), d("50")).String())
	assert.Equal(t, "3.33", LineAmount(d("0.333"), d("10")).String())
}

func TestCoerce(t *testing.T) {
	assert.True(t, Coerce(nil).IsZero())
	assert.True(t, Coerce("abc").IsZero())
	assert.True(t, Coerce("").IsZero())
	assert.True(t, Coerce(math.NaN()).IsZero())
	assert.True(t, Coerce(math.Inf(1)).IsZero())
	assert.True(t, Coerce("NaN").IsZero())
	assert.True(t, Coerce(true).IsZero())
	assert.Equal(t, "12.5", Coerce(" 12.5 ").String())
	assert.Equal(t, "3", Coerce(3).String())
	assert.Equal(t, "0.1", Coerce(0.1).String())
}

func TestNumberUnmarshal(t *testing.T) {
	var payload struct {
		Quantity Number `json:"quantity"`
		Rate     Number `json:"rate"`
		Amount   Number `json:"amount"`
		Missing  Number `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"quantity":"2","rate":"oops","amount":null}`), &payload))

	assert.Equal(t, "2", payload.Quantity.String())
	assert.True(t, payload.Quantity.Set)
	assert.True(t, payload.Rate.IsZero())
	assert.True(t, payload.Rate.Set)
	assert.False(t, payload.Amount.Set)
	assert.False(t, payload.Missing.Set)
}
