package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/delivery"
)

// Order is the immutable record of a paid checkout. Only Status and
// UpdatedAt change after creation.
type Order struct {
	ID               string          `json:"orderId"`
	OwnerID          int             `json:"ownerId"`
	Items            []cart.Item     `json:"items"`
	DeliveryCost     decimal.Decimal `json:"deliveryCost"`
	Total            decimal.Decimal `json:"total"`
	DeliveryType     delivery.Type   `json:"deliveryType"`
	DeliveryInfo     delivery.Info   `json:"deliveryInfo"`
	PaymentReference string          `json:"paymentReference"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Clone returns a copy whose Items do not alias o's.
func (o Order) Clone() Order {
	items := make([]cart.Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
