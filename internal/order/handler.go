package order

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/auth"
)

// Handler serves order reads and the admin status workflow. Order creation
// lives with checkout.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.listOwn)
	app.Get("/api/v1/orders/:id", h.getOrder)
	app.Patch("/api/v1/orders/:id", h.updateStatus)
	app.Get("/api/v1/admin/orders", h.listAll)
}

type updateStatusRequest struct {
	Status         string  `json:"status"`
	ExpectedStatus *string `json:"expectedStatus,omitempty"`
}

type updateStatusResponse struct {
	Order     Order `json:"order"`
	EmailSent bool  `json:"emailSent"`
}

func (h *Handler) listOwn(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	orders, err := h.service.ListForOwner(c.UserContext(), ownerID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	ownerID, err := auth.OwnerIDFromCtx(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	o, err := h.service.Get(c.UserContext(), c.Params("id"), ownerID, auth.IsAdmin(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	if _, err := auth.OwnerIDFromCtx(c); err != nil {
		return apperror.Respond(c, err)
	}
	if !auth.IsAdmin(c) {
		return apperror.Respond(c, apperror.ErrForbidden)
	}

	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	next, ok := ParseStatus(payload.Status)
	if !ok {
		return apperror.Respond(c, UnknownStatusError(payload.Status))
	}
	var expected *Status
	if payload.ExpectedStatus != nil {
		s, ok := ParseStatus(*payload.ExpectedStatus)
		if !ok {
			return apperror.Respond(c, UnknownStatusError(*payload.ExpectedStatus))
		}
		expected = &s
	}

	o, sent, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), next, expected)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(updateStatusResponse{Order: o, EmailSent: sent})
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	if _, err := auth.OwnerIDFromCtx(c); err != nil {
		return apperror.Respond(c, err)
	}
	if !auth.IsAdmin(c) {
		return apperror.Respond(c, apperror.ErrForbidden)
	}

	var statuses []Status
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, ok := ParseStatus(part)
			if !ok {
				return apperror.Respond(c, UnknownStatusError(part))
			}
			statuses = append(statuses, s)
		}
	}

	orders, err := h.service.List(c.UserContext(), statuses)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}
