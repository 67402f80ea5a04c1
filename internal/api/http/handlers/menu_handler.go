package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/service"
)

// MenuHandler serves the room-service menu.
type MenuHandler struct {
	menu *service.MenuService
}

// NewMenuHandler constructs handler.
func NewMenuHandler(menu *service.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// List GET /menu returns the items guests can order.
func (h *MenuHandler) List(c *fiber.Ctx) error {
	return h.list(c, false)
}

// AdminList GET /admin/menu, unavailable items included.
func (h *MenuHandler) AdminList(c *fiber.Ctx) error {
	return h.list(c, parseBoolQuery(c, "include_unavailable", true))
}

func (h *MenuHandler) list(c *fiber.Ctx, includeUnavailable bool) error {
	limit, offset := page(c, 100)
	items, err := h.menu.List(c.UserContext(), includeUnavailable, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.MenuItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, menuItemResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /admin/menu.
func (h *MenuHandler) Create(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.MenuItemRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	item, err := h.menu.Create(c.UserContext(), admin, menuInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": menuItemResponse(item)})
}

// Update PUT /admin/menu/:id.
func (h *MenuHandler) Update(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.MenuItemRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.menu.Update(c.UserContext(), admin, id, menuInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": menuItemResponse(item)})
}

func menuInput(req dto.MenuItemRequest) service.MenuItemInput {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   available,
	}
}
