package journal

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the given ISO currency, e.g. "$10,010.00".
// Unknown codes fall back to "10010.00 XYZ".
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0).IntPart()
	return money.New(minor, currency).Display()
}
