package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func day(n int) time.Time {
	return time.Date(2025, 6, n, 14, 0, 0, 0, time.UTC)
}

func TestCreateBookingPricesStay(t *testing.T) {
	f := newFixture(t)
	guest := f.guest("gina")
	room := f.room("101")

	booking, err := f.bookings.CreateBooking(f.ctx, guest.ID, CreateBookingInput{
		RoomID: room.ID, CheckIn: day(3), CheckOut: day(6), Guests: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, 360.0, booking.Total)
}

func TestCreateBookingRejections(t *testing.T) {
	f := newFixture(t)
	guest := f.guest("gina")
	room := f.room("101")
	_, err := f.bookings.CreateBooking(f.ctx, guest.ID, CreateBookingInput{RoomID: room.ID, CheckIn: day(3), CheckOut: day(6)})
	require.NoError(t, err)

	cases := map[string]struct {
		input CreateBookingInput
		code  string
	}{
		"overlapping stay": {CreateBookingInput{RoomID: room.ID, CheckIn: day(5), CheckOut: day(8)}, apperrors.CodeConflict},
		"reversed dates":   {CreateBookingInput{RoomID: room.ID, CheckIn: day(8), CheckOut: day(7)}, apperrors.CodeValidation},
		"past check in":    {CreateBookingInput{RoomID: room.ID, CheckIn: day(1).Add(-48 * time.Hour), CheckOut: day(2)}, apperrors.CodeValidation},
		"too many guests":  {CreateBookingInput{RoomID: room.ID, CheckIn: day(10), CheckOut: day(11), Guests: 5}, apperrors.CodeValidation},
		"unknown room":     {CreateBookingInput{RoomID: "nope", CheckIn: day(10), CheckOut: day(11)}, apperrors.CodeNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(f.ctx, guest.ID, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tc.code), "got %v", err)
		})
	}

	t.Run("back to back stays are fine", func(t *testing.T) {
		_, err := f.bookings.CreateBooking(f.ctx, guest.ID, CreateBookingInput{RoomID: room.ID, CheckIn: day(6), CheckOut: day(7)})
		require.NoError(t, err)
	})
}

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	guest := f.guest("gina")
	room := f.room("101")
	booking, err := f.bookings.CreateBooking(f.ctx, guest.ID, CreateBookingInput{RoomID: room.ID, CheckIn: day(3), CheckOut: day(5)})
	require.NoError(t, err)

	_, err = f.bookings.CheckOut(f.ctx, admin, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	confirmed, err := f.bookings.Confirm(f.ctx, admin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
	mails := f.notificationsTo("gina@guest.test")
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].Body, "room 101")

	pdf, err := f.bookings.Voucher(f.ctx, guest.ID, booking.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	other := f.guest("other")
	_, err = f.bookings.Voucher(f.ctx, other.ID, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	done, err := f.bookings.CheckOut(f.ctx, admin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCheckedOut, done.Status)

	_, err = f.bookings.Cancel(f.ctx, guest.ID, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCancelBookingFreesRoom(t *testing.T) {
	f := newFixture(t)
	guest := f.guest("gina")
	room := f.room("101")
	input := CreateBookingInput{RoomID: room.ID, CheckIn: day(3), CheckOut: day(5)}
	booking, err := f.bookings.CreateBooking(f.ctx, guest.ID, input)
	require.NoError(t, err)

	_, err = f.bookings.Cancel(f.ctx, f.guest("other").ID, booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	cancelled, err := f.bookings.Cancel(f.ctx, guest.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	_, err = f.bookings.CreateBooking(f.ctx, guest.ID, input)
	assert.NoError(t, err)

	mine, err := f.bookings.ListForUser(f.ctx, guest.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
