package handlers

import (
	"lapak/internal/apperrors"
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles HTTP requests for the item catalogue.
type ItemHandler struct {
	service *services.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{
		service: service,
	}
}

// RegisterRoutes registers the item routes. They need no authentication.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Get("/:id", h.HandleGetItem)
}

// HandleListItems lists items, optionally filtered by store, price range and availability.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	var filter models.ItemFilter
	if err := c.QueryParser(&filter); err != nil {
		return apperrors.ErrInvalidField
	}
	if err := validateStruct(&filter); err != nil {
		return err
	}

	items, err := h.service.ListItems(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// HandleGetItem retrieves a single item by its ID.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}
