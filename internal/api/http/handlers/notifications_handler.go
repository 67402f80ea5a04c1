package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/service"
)

// NotificationsHandler exposes the mail outbox to admins.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /admin/notifications?status=failed.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var status *domain.NotificationStatus
	if s := c.Query("status"); s != "" {
		st := domain.NotificationStatus(s)
		status = &st
	}
	limit, offset := page(c, 50)
	rows, err := h.notifications.ListOutbox(c.UserContext(), admin, status, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, notificationResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}
