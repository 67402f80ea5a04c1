package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestTaskReportAndOutboxListing(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	ana := f.activeStaff("ana")[0]
	room := f.room("101")
	f.pendingTasks(ana, room, 2)

	pdf, err := NewReportService(f.repos).TaskReport(f.ctx, admin, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, err = NewReportService(f.repos).TaskReport(f.ctx, ana, nil, nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID})
	require.NoError(t, err)
	outbox := NewNotificationService(nil, nil, f.repos.Notifications, nil)
	pending := domain.NotificationStatusPending
	rows, err := outbox.ListOutbox(f.ctx, admin, &pending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
