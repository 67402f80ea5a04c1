package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
)

func TestTaskReportRendersPDF(t *testing.T) {
	staff := "staff-1"
	done := time.Date(2025, 3, 2, 11, 0, 0, 0, time.UTC)
	rows := []TaskRow{
		{
			Task: domain.Task{
				Kind:         domain.TaskKindHousekeeping,
				AssigneeID:   &staff,
				Status:       domain.TaskStatusCompleted,
				ScheduledFor: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
				CompletedAt:  &done,
				Description:  "Full turnover after checkout, replace linens and restock the minibar",
			},
			RoomNumber: "101",
			StaffName:  "Ana",
		},
		{
			Task:       domain.Task{Kind: domain.TaskKindDelivery, Status: domain.TaskStatusPending},
			RoomNumber: "204",
		},
	}

	out, err := TaskReport("Tasks", done, rows)

	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTaskReportEmpty(t *testing.T) {
	out, err := TaskReport("Tasks", time.Now(), nil)

	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestVoucherEmbedsQRCode(t *testing.T) {
	booking := &domain.Booking{
		ID:       "b-1",
		CheckIn:  time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 5, 4, 11, 0, 0, 0, time.UTC),
		Guests:   2,
		Status:   domain.BookingStatusConfirmed,
		Total:    360,
	}
	room := &domain.Room{Number: "101", Type: "double"}
	guest := &domain.User{Name: "Guest"}

	out, err := Voucher("Hotel", booking, room, guest)

	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	require.Greater(t, len(out), 1000)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "abcd~", truncate("abcdefgh", 5))
}
