package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/report"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

const maxStayNights = 60

// CreateBookingInput describes a reservation request.
type CreateBookingInput struct {
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// BookingListFilter narrows back-office listings.
type BookingListFilter struct {
	UserID   *string
	RoomID   *string
	Statuses []domain.BookingStatus
	Limit    int
	Offset   int
}

// BookingService owns the reservation lifecycle.
type BookingService struct {
	repos     repository.Repositories
	tx        repository.TxRunner
	hotelName string
	logger    *zap.Logger
	now       func() time.Time
}

// BookingDependencies bundles collaborators.
type BookingDependencies struct {
	Repos     repository.Repositories
	Tx        repository.TxRunner
	HotelName string
	Logger    *zap.Logger
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := deps.HotelName
	if name == "" {
		name = "Hotel"
	}
	return &BookingService{
		repos:     deps.Repos,
		tx:        deps.Tx,
		hotelName: name,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBooking reserves a room when it is free for the whole stay.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, input CreateBookingInput) (*domain.Booking, error) {
	checkIn, checkOut := input.CheckIn.UTC(), input.CheckOut.UTC()
	if !checkOut.After(checkIn) {
		return nil, apperrors.NewValidationError("check_out must be after check_in", nil)
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return nil, apperrors.NewValidationError("check_in is in the past", nil)
	}
	if checkOut.Sub(checkIn) > maxStayNights*24*time.Hour {
		return nil, apperrors.NewValidationError(fmt.Sprintf("stays are limited to %d nights", maxStayNights), nil)
	}
	if input.Guests < 1 {
		input.Guests = 1
	}

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		room, err := repos.Rooms.GetByID(ctx, input.RoomID)
		if err != nil {
			return notFoundOr(err, "room", map[string]any{"room_id": input.RoomID})
		}
		if room.Status != domain.RoomStatusAvailable {
			return apperrors.NewConflict("room is not bookable", map[string]any{"status": room.Status})
		}
		if input.Guests > room.Capacity {
			return apperrors.NewValidationError("too many guests for room", map[string]any{"capacity": room.Capacity})
		}
		overlap, err := repos.Bookings.HasOverlap(ctx, room.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if overlap {
			return apperrors.NewConflict("room already booked for these dates", nil)
		}

		b := &domain.Booking{
			UserID:   userID,
			RoomID:   room.ID,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Guests:   input.Guests,
			Status:   domain.BookingStatusPending,
		}
		b.Total = float64(b.Nights()) * room.PricePerNight
		if err := repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return booking, nil
}

// ListForUser returns the guest's bookings.
func (s *BookingService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Booking, error) {
	return s.List(ctx, BookingListFilter{UserID: &userID, Limit: limit, Offset: offset})
}

// List returns bookings matching filter.
func (s *BookingService) List(ctx context.Context, filter BookingListFilter) ([]domain.Booking, error) {
	bookings, err := s.repos.Bookings.List(ctx, repository.BookingFilter{
		UserID:   filter.UserID,
		RoomID:   filter.RoomID,
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return bookings, nil
}

// GetForUser loads a booking owned by userID.
func (s *BookingService) GetForUser(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking", map[string]any{"booking_id": bookingID})
	}
	if booking.UserID != userID {
		return nil, apperrors.NewNotFound("booking", map[string]any{"booking_id": bookingID})
	}
	return booking, nil
}

// Cancel lets the guest cancel a booking that has not been checked out.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) (*domain.Booking, error) {
	return s.transition(ctx, bookingID, func(b *domain.Booking) error {
		if b.UserID != userID {
			return apperrors.NewNotFound("booking", map[string]any{"booking_id": bookingID})
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			return apperrors.NewConflict("booking cannot be cancelled", map[string]any{"status": b.Status})
		}
		b.Status = domain.BookingStatusCancelled
		return nil
	}, nil)
}

// Confirm accepts a pending booking and mails the guest.
func (s *BookingService) Confirm(ctx context.Context, actor *domain.StaffMember, bookingID string) (*domain.Booking, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusPending {
			return apperrors.NewConflict("only pending bookings can be confirmed", map[string]any{"status": b.Status})
		}
		b.Status = domain.BookingStatusConfirmed
		return nil
	}, func(ctx context.Context, repos repository.Repositories, b *domain.Booking) error {
		guest, err := repos.Users.GetByID(ctx, b.UserID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": b.UserID})
		}
		room, err := repos.Rooms.GetByID(ctx, b.RoomID)
		if err != nil {
			return notFoundOr(err, "room", map[string]any{"room_id": b.RoomID})
		}
		body := fmt.Sprintf("Hello %s,\n\nyour stay in room %s from %s to %s is confirmed. Total: %.2f.",
			guest.Name, room.Number, b.CheckIn.Format("02 Jan 2006"), b.CheckOut.Format("02 Jan 2006"), b.Total)
		return enqueueMail(ctx, repos.Notifications, guest.Email, s.hotelName+": booking confirmed", body)
	})
}

// CheckOut closes a confirmed booking.
func (s *BookingService) CheckOut(ctx context.Context, actor *domain.StaffMember, bookingID string) (*domain.Booking, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.transition(ctx, bookingID, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusConfirmed {
			return apperrors.NewConflict("only confirmed bookings can be checked out", map[string]any{"status": b.Status})
		}
		b.Status = domain.BookingStatusCheckedOut
		return nil
	}, nil)
}

func (s *BookingService) transition(
	ctx context.Context,
	bookingID string,
	apply func(b *domain.Booking) error,
	after func(ctx context.Context, repos repository.Repositories, b *domain.Booking) error,
) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFoundOr(err, "booking", map[string]any{"booking_id": bookingID})
		}
		if err := apply(b); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if after != nil {
			if err := after(ctx, repos, b); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return booking, nil
}

// Voucher renders the guest's booking confirmation as PDF.
func (s *BookingService) Voucher(ctx context.Context, userID, bookingID string) ([]byte, error) {
	booking, err := s.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, apperrors.NewConflict("booking is cancelled", nil)
	}
	room, err := s.repos.Rooms.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, notFoundOr(err, "room", map[string]any{"room_id": booking.RoomID})
	}
	guest, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	pdf, err := report.Voucher(s.hotelName, booking, room, guest)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return pdf, nil
}
