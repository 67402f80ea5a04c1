package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/service"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// ChatHandler serves booking chat threads for guests and staff.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func chatAuthor(c *fiber.Ctx) (service.ChatAuthor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.ChatAuthor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.ChatAuthor{Type: principal.AuthorType(), ID: principal.ID()}, nil
}

// List GET /bookings/:id/messages.
func (h *ChatHandler) List(c *fiber.Ctx) error {
	author, err := chatAuthor(c)
	if err != nil {
		return err
	}
	limit, offset := page(c, 100)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	msgs, err := h.chat.List(c.UserContext(), author, id, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		resp = append(resp, chatResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Post POST /bookings/:id/messages.
func (h *ChatHandler) Post(c *fiber.Ctx) error {
	author, err := chatAuthor(c)
	if err != nil {
		return err
	}
	var req dto.ChatMessageRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	msg, err := h.chat.Post(c.UserContext(), author, id, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatResponse(msg)})
}
