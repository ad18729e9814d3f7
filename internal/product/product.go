package product

import "github.com/shopspring/decimal"

// Product is the catalog view the cart and checkout need. It maps to the
// `public.product` table. Stock is nil for products that are not
// stock-tracked.
type Product struct {
	ID       int             `json:"productId"`
	Name     string          `json:"productName"`
	Price    decimal.Decimal `json:"productPrice"`
	Stock    *int            `json:"stock,omitempty"`
	ImageRef string          `json:"productPic,omitempty"`
}

// InStock reports whether qty units can be sold.
func (p Product) InStock(qty int) bool {
	return p.Stock == nil || *p.Stock >= qty
}
