package cart

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/pricing"
)

// Item is one cart line. Name, UnitPrice and ImageRef are captured from the
// catalog when the line is first added.
type Item struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef,omitempty"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart belongs to exactly one owner and never holds two lines for the same
// product. Version increases on every write.
type Cart struct {
	OwnerID int    `json:"ownerId"`
	Items   []Item `json:"items"`
	Version int64  `json:"-"`
}

func (c Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Items)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

func (c *Cart) indexOf(productID int) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}
