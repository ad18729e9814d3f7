package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/delivery"
	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/pricing"
	"github.com/wichananm65/storefront/internal/product"
)

// ErrDuplicatePayment is returned when a payment reference already produced
// an order. For the same owner the existing order is returned alongside it.
var ErrDuplicatePayment = apperror.New(apperror.KindDuplicatePayment, "this payment has already been used to place an order")

var ErrEmptyCart = apperror.New(apperror.KindEmptyCart, "cart is empty")

// Store writes a new order and empties the owner's cart as one step. It
// fails with order.ErrDuplicatePaymentReference when the reference is taken
// and with cart.ErrCartChanged when the cart is no longer at cartVersion. On
// any failure neither side is changed.
type Store interface {
	PlaceOrder(ctx context.Context, o order.Order, cartVersion int64) error
}

// Request is a checkout submitted after the payment provider confirmed
// payment. TotalAmount and DeliveryCost are what the client displayed; when
// set they must match the server's figures.
type Request struct {
	OwnerID          int
	PaymentReference string
	DeliveryType     string
	Delivery         delivery.Info
	TotalAmount      *decimal.Decimal
	DeliveryCost     *decimal.Decimal
}

type Deps struct {
	Carts    cart.Repository
	Orders   order.Repository
	Store    Store
	Catalog  product.Catalog
	Registry *delivery.Registry
	Notifier order.Notifier
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// NotifyOnCreate also sends an event for the initial processing status.
	NotifyOnCreate bool
}

type Service struct {
	carts          cart.Repository
	orders         order.Repository
	store          Store
	catalog        product.Catalog
	registry       *delivery.Registry
	notifier       order.Notifier
	logger         *zap.Logger
	metrics        *metrics.Metrics
	notifyOnCreate bool
	validate       *validator.Validate

	now   func() time.Time
	newID func() string
}

func NewService(d Deps) *Service {
	if d.Notifier == nil {
		d.Notifier = order.NopNotifier{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		carts:          d.Carts,
		orders:         d.Orders,
		store:          d.Store,
		catalog:        d.Catalog,
		registry:       d.Registry,
		notifier:       d.Notifier,
		logger:         d.Logger,
		metrics:        d.Metrics,
		notifyOnCreate: d.NotifyOnCreate,
		validate:       newValidator(),
		now:            func() time.Time { return time.Now().UTC() },
		newID:          func() string { return uuid.NewString() },
	}
}

// Checkout converts the owner's cart into an order. On an idempotent replay
// it returns the order created by the first call together with
// ErrDuplicatePayment.
func (s *Service) Checkout(ctx context.Context, req Request) (order.Order, error) {
	o, err := s.checkout(ctx, req)
	s.metrics.CheckoutOutcome(outcome(err))
	return o, err
}

func (s *Service) checkout(ctx context.Context, req Request) (order.Order, error) {
	if req.OwnerID <= 0 {
		return order.Order{}, apperror.ErrUnauthenticated
	}

	form := formFrom(req)

	// A successful checkout empties the cart, so a retried confirmation has
	// to be recognised before the empty-cart check.
	if form.PaymentReference != "" {
		if existing, err := s.replay(ctx, req.OwnerID, form.PaymentReference); err != nil || existing.ID != "" {
			return existing, err
		}
	}

	c, err := s.carts.Get(ctx, req.OwnerID)
	if err != nil {
		return order.Order{}, apperror.Logged(s.logger, "checkout: load cart", err, zap.Int("owner_id", req.OwnerID))
	}
	if c.IsEmpty() {
		return order.Order{}, ErrEmptyCart
	}

	if err := validateForm(s.validate, form); err != nil {
		return order.Order{}, err
	}

	deliveryType, _ := delivery.ParseType(form.DeliveryType)
	info := req.Delivery
	sel, err := info.Selection(deliveryType)
	if err != nil {
		return order.Order{}, err
	}

	quote, err := pricing.Price(c.Items, s.registry, sel)
	if err != nil {
		return order.Order{}, err
	}

	if err := s.reconcile(ctx, c, quote, req); err != nil {
		return order.Order{}, err
	}

	now := s.now()
	o := order.Order{
		ID:           s.newID(),
		OwnerID:      req.OwnerID,
		Items:        c.Clone().Items,
		DeliveryCost: quote.Surcharge,
		Total:        quote.Total,
		DeliveryType: deliveryType,
		DeliveryInfo: delivery.NewInfo(sel, delivery.Contact{
			Name:  form.Contact.Name,
			Email: form.Contact.Email,
			Phone: form.Contact.Phone,
		}),
		PaymentReference: form.PaymentReference,
		Status:           order.StatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.PlaceOrder(ctx, o, c.Version); err != nil {
		switch {
		case errors.Is(err, order.ErrDuplicatePaymentReference):
			// lost a race with a concurrent call using the same reference
			existing, rerr := s.replay(ctx, req.OwnerID, o.PaymentReference)
			if rerr != nil {
				return existing, rerr
			}
			return order.Order{}, ErrDuplicatePayment
		case errors.Is(err, cart.ErrCartChanged):
			return order.Order{}, err
		default:
			s.logger.Error("checkout persistence failed",
				zap.Int("owner_id", req.OwnerID),
				zap.String("payment_reference", o.PaymentReference),
				zap.Error(err),
			)
			return order.Order{}, apperror.Persistence(err)
		}
	}

	s.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("owner_id", o.OwnerID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("delivery_type", string(o.DeliveryType)),
	)

	if s.notifyOnCreate {
		s.notifier.Notify(ctx, order.StatusEvent{
			OrderID:    o.ID,
			OwnerID:    o.OwnerID,
			NewStatus:  o.Status,
			OccurredAt: now,
		})
	}
	return o, nil
}

// replay looks up an earlier order for ref. It returns a zero Order and nil
// error when there is none.
func (s *Service) replay(ctx context.Context, ownerID int, ref string) (order.Order, error) {
	existing, err := s.orders.FindByPaymentReference(ctx, ref)
	switch {
	case errors.Is(err, order.ErrNotFound):
		return order.Order{}, nil
	case err != nil:
		return order.Order{}, apperror.Logged(s.logger, "checkout: replay lookup", err,
			zap.Int("owner_id", ownerID), zap.String("payment_reference", ref))
	case existing.OwnerID != ownerID:
		s.logger.Warn("payment reference reused by another owner",
			zap.Int("owner_id", ownerID),
			zap.String("payment_reference", ref),
		)
		return order.Order{}, ErrDuplicatePayment
	default:
		return existing, ErrDuplicatePayment
	}
}

// reconcile checks the client's displayed figures against the quote and the
// catalog's current availability. Prices are not re-read: the order keeps
// the prices captured in the cart.
func (s *Service) reconcile(ctx context.Context, c cart.Cart, quote pricing.Quote, req Request) error {
	var issues []apperror.Issue

	if req.TotalAmount != nil && !req.TotalAmount.Equal(quote.Total) {
		issues = append(issues, apperror.Issue{
			Field:   "totalAmount",
			Message: fmt.Sprintf("does not match the order total %s", quote.Total.StringFixed(2)),
		})
	}
	if req.DeliveryCost != nil && !req.DeliveryCost.Equal(quote.Surcharge) {
		issues = append(issues, apperror.Issue{
			Field:   "deliveryCost",
			Message: fmt.Sprintf("does not match the delivery cost %s", quote.Surcharge.StringFixed(2)),
		})
	}

	for i, it := range c.Items {
		field := fmt.Sprintf("items[%d]", i)
		p, err := s.catalog.GetByID(ctx, it.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			issues = append(issues, apperror.Issue{Field: field, Message: fmt.Sprintf("product %d is no longer available", it.ProductID)})
			continue
		}
		if err != nil {
			return apperror.Logged(s.logger, "checkout: catalog lookup", err,
				zap.Int("owner_id", c.OwnerID), zap.Int("product_id", it.ProductID))
		}
		if !p.InStock(it.Quantity) {
			issues = append(issues, apperror.Issue{Field: field, Message: fmt.Sprintf("only %d of %q left in stock", *p.Stock, it.Name)})
		}
	}

	if len(issues) > 0 {
		return apperror.Invalid(issues)
	}
	return nil
}

// Quote prices the owner's current cart for a delivery selection without
// placing an order.
func (s *Service) Quote(ctx context.Context, ownerID int, deliveryType string, info delivery.Info) (pricing.Quote, error) {
	if ownerID <= 0 {
		return pricing.Quote{}, apperror.ErrUnauthenticated
	}
	t, ok := delivery.ParseType(deliveryType)
	if !ok {
		return pricing.Quote{}, apperror.Invalid([]apperror.Issue{{Field: "deliveryType", Message: "must be one of: pickup, carpark, home"}})
	}
	sel, err := info.Selection(t)
	if err != nil {
		return pricing.Quote{}, err
	}

	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return pricing.Quote{}, apperror.Logged(s.logger, "checkout quote: load cart", err, zap.Int("owner_id", ownerID))
	}
	return pricing.Price(c.Items, s.registry, sel)
}

func outcome(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindUnknown:
		if err == nil {
			return "created"
		}
		return "failed"
	case apperror.KindDuplicatePayment:
		return "replayed"
	case apperror.KindPersistence:
		return "failed"
	default:
		return "rejected"
	}
}
