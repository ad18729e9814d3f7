package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/auth"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart", h.addItem)
	// older clients still post to the product-scoped path
	app.Post("/api/v1/product/cart", h.addItem)
	app.Put("/api/v1/cart", h.setQuantity)
	app.Delete("/api/v1/cart", h.clear)
	app.Delete("/api/v1/cart/:productId<[0-9]+>", h.removeItem)
}

type addItemRequest struct {
	ProductID int  `json:"productId"`
	Quantity  *int `json:"quantity,omitempty"`
}

type setQuantityRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type cartResponse struct {
	OwnerID  int             `json:"ownerId"`
	Items    []Item          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func toResponse(c Cart) cartResponse {
	return cartResponse{OwnerID: c.OwnerID, Items: c.Items, Subtotal: c.Subtotal()}
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	cart, err := h.service.Get(c.UserContext(), ownerID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}

	cart, err := h.service.AddItem(c.UserContext(), ownerID, payload.ProductID, qty)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	payload := new(setQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	cart, err := h.service.SetQuantity(c.UserContext(), ownerID, payload.ProductID, payload.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
	}

	cart, err := h.service.RemoveItem(c.UserContext(), ownerID, &productID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}

// clear drops the line named by ?productId=, or every line when the query is
// absent.
func (h *Handler) clear(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	var productID *int
	if raw := c.Query("productId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid productId"})
		}
		productID = &id
	}

	cart, err := h.service.RemoveItem(c.UserContext(), ownerID, productID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(toResponse(cart))
}
