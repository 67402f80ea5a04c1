package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
	"github.com/spec-kit/hotel-service/internal/service"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// RoomsHandler serves the room catalogue and its admin endpoints.
type RoomsHandler struct {
	rooms *service.RoomService
}

// NewRoomsHandler constructs handler.
func NewRoomsHandler(rooms *service.RoomService) *RoomsHandler {
	return &RoomsHandler{rooms: rooms}
}

// List GET /rooms.
func (h *RoomsHandler) List(c *fiber.Ctx) error {
	filter := repository.RoomFilter{Type: optionalQuery(c, "type")}
	if status := c.Query("status"); status != "" {
		s := domain.RoomStatus(status)
		filter.Status = &s
	}
	filter.Limit, filter.Offset = page(c, 50)

	rooms, err := h.rooms.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, roomResponse(&rooms[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /rooms/:id.
func (h *RoomsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.rooms.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": roomResponse(room)})
}

// Create POST /admin/rooms.
func (h *RoomsHandler) Create(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RoomRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.Create(c.UserContext(), admin, roomInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": roomResponse(room)})
}

// Update PUT /admin/rooms/:id.
func (h *RoomsHandler) Update(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RoomRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.rooms.Update(c.UserContext(), admin, id, roomInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": roomResponse(room)})
}

// Delete DELETE /admin/rooms/:id.
func (h *RoomsHandler) Delete(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.rooms.Delete(c.UserContext(), admin, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UploadImage POST /admin/rooms/:id/images, multipart field "image".
func (h *RoomsHandler) UploadImage(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("multipart field image required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	img, err := h.rooms.AddImage(c.UserContext(), admin, id, file)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": roomImageResponse(img)})
}

// DeleteImage DELETE /admin/rooms/:id/images/:imageId.
func (h *RoomsHandler) DeleteImage(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	imageID, err := pathID(c, "imageId")
	if err != nil {
		return err
	}
	if err := h.rooms.DeleteImage(c.UserContext(), admin, id, imageID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func roomInput(req dto.RoomRequest) service.RoomInput {
	return service.RoomInput{
		Number:        req.Number,
		Type:          req.Type,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		Status:        req.Status,
	}
}
