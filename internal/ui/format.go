package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"virtum/internal/core"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatMoney renders m as Brazilian reais, e.g. "R$ 2.724,60" and
// "R$ -12,34".
func FormatMoney(m core.Money) string {
	sign := ""
	if m.IsNegative() {
		sign = "-"
		m = m.Neg()
	}
	return "R$ " + sign + brPrinter.Sprintf("%.2f", m.Float())
}

// FormatMonth renders a YYYY-MM key as MM/YYYY.
func FormatMonth(month string) string {
	if len(month) != 7 || month[4] != '-' {
		return month
	}
	return month[5:] + "/" + month[:4]
}
