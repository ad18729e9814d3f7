package delivery

import "github.com/gofiber/fiber/v2"

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/delivery-options", h.listOptions)
}

func (h *Handler) listOptions(c *fiber.Ctx) error {
	return c.JSON(h.registry.Options())
}
