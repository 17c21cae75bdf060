package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats an amount as Brazilian currency ("R$ 1.234,56").
func BRL(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return "-R$ " + ptBR.Sprintf("%.2f", -f)
	}
	return "R$ " + ptBR.Sprintf("%.2f", f)
}
