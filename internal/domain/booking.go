package domain

import "time"

// BookingStatus enumerates lifecycle states for room bookings.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusCheckedOut BookingStatus = "checked_out"
)

// Booking reserves a room for a guest between check-in and check-out.
type Booking struct {
	ID        string
	UserID    string
	RoomID    string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Status    BookingStatus
	Total     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveAt reports whether the booking is confirmed and covers t.
func (b *Booking) ActiveAt(t time.Time) bool {
	if b == nil || b.Status != BookingStatusConfirmed {
		return false
	}
	return !t.Before(b.CheckIn) && t.Before(b.CheckOut)
}

// Nights returns the number of nights covered, at least one.
func (b *Booking) Nights() int {
	nights := int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
	if nights < 1 {
		return 1
	}
	return nights
}
