package handlers

import (
	"lapak/internal/middleware"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes. router must run middleware.AuthRequired.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Patch("/", h.HandleUpdateCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

type cartLineRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
}

// HandleUpdateCart sets the quantity of one item in the cart. Quantity 0 removes it.
func (h *CartHandler) HandleUpdateCart(c *fiber.Ctx) error {
	var req cartLineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	cart, err := h.service.AddOrUpdate(c.UserContext(), user.ID, req.ItemID, *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleGetCart returns the priced cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	cart, err := h.service.GetCart(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(cart)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.service.ClearCart(c.UserContext(), user.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCheckout turns the cart into an order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	order, err := h.service.Checkout(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
