package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/delivery"
)

// Line is anything that contributes unit price times quantity to a subtotal.
type Line interface {
	LineTotal() decimal.Decimal
}

type Quote struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Surcharge decimal.Decimal `json:"surcharge"`
	Total     decimal.Decimal `json:"total"`
}

func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Price quotes lines delivered via sel. The surcharge is always added to the
// subtotal; an unknown option fails before anything is totalled.
func Price[L Line](lines []L, registry *delivery.Registry, sel delivery.Selection) (Quote, error) {
	surcharge, err := registry.Surcharge(sel)
	if err != nil {
		return Quote{}, err
	}

	subtotal := Subtotal(lines)
	return Quote{
		Subtotal:  subtotal,
		Surcharge: surcharge,
		Total:     subtotal.Add(surcharge),
	}, nil
}
