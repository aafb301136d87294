// Package format formata números para exibição em pt-BR (agrupamento de
// milhares e casas decimais fixas).
//
//	Number(decimal.NewFromFloat(18040.173), 2) -> "18.040,17"
//	Number(decimal.NewFromInt(3000), 2)        -> "3.000,00"
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Number formata o valor com separador de milhar e decimalPos casas decimais.
func Number(d decimal.Decimal, decimalPos int) string {
	f, _ := d.Float64()
	return printer.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(decimalPos),
		number.MaxFractionDigits(decimalPos),
	))
}

// Money formata um valor monetário com duas casas decimais.
func Money(d decimal.Decimal) string {
	return Number(d, 2)
}
