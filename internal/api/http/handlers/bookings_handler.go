package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/service"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// BookingsHandler manages guest reservations and the back-office workflow.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// Create POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BookingRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	if req.RoomID == "" {
		return apperrors.NewValidationError("room_id required", nil)
	}
	checkIn, err := requireTime("check_in", req.CheckIn)
	if err != nil {
		return err
	}
	checkOut, err := requireTime("check_out", req.CheckOut)
	if err != nil {
		return err
	}

	booking, err := h.bookings.CreateBooking(c.UserContext(), user.ID, service.CreateBookingInput{
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bookingResponse(booking)})
}

// ListMine GET /bookings.
func (h *BookingsHandler) ListMine(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := page(c, 20)
	bookings, err := h.bookings.ListForUser(c.UserContext(), user.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingList(bookings)})
}

// Cancel POST /bookings/:id/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Cancel(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// Voucher GET /bookings/:id/voucher.pdf.
func (h *BookingsHandler) Voucher(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	body, err := h.bookings.Voucher(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return sendPDF(c, "voucher-"+id+".pdf", body)
}

// AdminList GET /admin/bookings.
func (h *BookingsHandler) AdminList(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	filter := service.BookingListFilter{
		UserID: optionalQuery(c, "user_id"),
		RoomID: optionalQuery(c, "room_id"),
	}
	for _, s := range splitQuery(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.BookingStatus(s))
	}
	filter.Limit, filter.Offset = page(c, 50)

	bookings, err := h.bookings.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingList(bookings)})
}

// Confirm POST /admin/bookings/:id/confirm.
func (h *BookingsHandler) Confirm(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Confirm(c.UserContext(), admin, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// CheckOut POST /admin/bookings/:id/check-out.
func (h *BookingsHandler) CheckOut(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.CheckOut(c.UserContext(), admin, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

func bookingList(bookings []domain.Booking) []dto.BookingResponse {
	out := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingResponse(&bookings[i]))
	}
	return out
}
