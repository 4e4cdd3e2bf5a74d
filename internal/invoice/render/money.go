package render

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter prints amounts as symbol plus a grouped two-decimal number.
type MoneyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewMoneyFormatter falls back to "$" and en-US for empty or unparsable input.
func NewMoneyFormatter(symbol, numberFormat string) MoneyFormatter {
	if strings.TrimSpace(symbol) == "" {
		symbol = "$"
	}
	tag, err := language.Parse(strings.TrimSpace(numberFormat))
	if err != nil {
		tag = language.AmericanEnglish
	}
	return MoneyFormatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

func (f MoneyFormatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}
