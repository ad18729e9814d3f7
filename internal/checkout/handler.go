package checkout

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/delivery"
)

// IdempotencyHeader may carry the payment reference when the body does not.
const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.checkout)
	app.Post("/api/v1/checkout/quote", h.quote)
}

type checkoutRequest struct {
	PaymentReference string           `json:"paymentReference"`
	DeliveryType     string           `json:"deliveryType"`
	DeliveryInfo     delivery.Info    `json:"deliveryInfo"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	DeliveryCost     *decimal.Decimal `json:"deliveryCost,omitempty"`
}

type quoteRequest struct {
	DeliveryType string        `json:"deliveryType"`
	DeliveryInfo delivery.Info `json:"deliveryInfo"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	ref := payload.PaymentReference
	if strings.TrimSpace(ref) == "" {
		ref = c.Get(IdempotencyHeader)
	}

	o, err := h.service.Checkout(c.UserContext(), Request{
		OwnerID:          ownerID,
		PaymentReference: ref,
		DeliveryType:     payload.DeliveryType,
		Delivery:         payload.DeliveryInfo,
		TotalAmount:      payload.TotalAmount,
		DeliveryCost:     payload.DeliveryCost,
	})
	if err != nil {
		// a retried confirmation gets the order the first call created
		if apperror.KindOf(err) == apperror.KindDuplicatePayment && o.ID != "" {
			return c.Status(fiber.StatusOK).JSON(o)
		}
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) quote(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	payload := new(quoteRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	q, err := h.service.Quote(c.UserContext(), ownerID, payload.DeliveryType, payload.DeliveryInfo)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(q)
}
