package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/service"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// OrdersHandler exposes room-service ordering.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Place POST /orders. The response carries the delivery task and its
// round-robin assignee.
func (h *OrdersHandler) Place(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.OrderRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items required", nil)
	}
	input := service.PlaceOrderInput{Notes: req.Notes}
	for _, line := range req.Items {
		input.Items = append(input.Items, service.OrderLineInput{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}

	order, task, err := h.orders.PlaceOrder(c.UserContext(), user.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orderResponse(order, task)})
}

// List GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := page(c, 20)
	orders, err := h.orders.ListOrders(c.UserContext(), user.ID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderResponse(&orders[i], nil))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Cancel POST /orders/:id/cancel.
func (h *OrdersHandler) Cancel(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.CancelOrder(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order, nil)})
}
