package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

func TestCreateTaskPicksLeastLoaded(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("s0", "s1", "s2", "s3")
	room := f.room("101")
	for i, n := range []int{3, 1, 1, 5} {
		f.pendingTasks(staff[i], room, n)
	}

	task, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID})

	require.NoError(t, err)
	assert.Equal(t, staff[1].ID, *task.AssigneeID)
	assert.Equal(t, domain.TaskKindHousekeeping, task.Kind)
	assert.Equal(t, "Housekeeping for room 101", task.Description)
	assert.Len(t, f.notificationsTo("s1@hotel.test"), 1)
	assert.Equal(t, 1, f.store.CountPendingCalls)
	assert.Equal(t, []string{"staff:" + staff[1].ID}, f.published.topics(string(events.EventTaskAssigned)))

	history, err := f.tasks.History(f.ctx, admin, task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChangeTypeAssigned, history[0].ChangeType)
	assert.Equal(t, "least_loaded", history[0].NewValue["policy"])
}

func TestCreateTaskIgnoresCompletedWork(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("busy", "idle")
	room := f.room("101")
	f.pendingTasks(staff[0], room, 1)
	done := &domain.Task{Kind: domain.TaskKindHousekeeping, AssigneeID: &staff[1].ID, Status: domain.TaskStatusCompleted, RoomID: room.ID}
	require.NoError(t, f.repos.Tasks.Create(f.ctx, done))

	task, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID, Kind: domain.TaskKindMaintenance})

	require.NoError(t, err)
	assert.Equal(t, staff[1].ID, *task.AssigneeID)
}

func TestCreateTaskExplicitAssignee(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("ana", "ben")
	room := f.room("101")
	f.pendingTasks(staff[1], room, 4)
	f.store.CountPendingCalls = 0
	f.store.ListAssignableCall = 0

	task, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID, AssigneeEmail: " BEN@hotel.test "})

	require.NoError(t, err)
	assert.Equal(t, staff[1].ID, *task.AssigneeID)
	assert.Zero(t, f.store.CountPendingCalls)
	assert.Zero(t, f.store.ListAssignableCall)

	history, err := f.tasks.History(f.ctx, admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "explicit", history[0].NewValue["policy"])
}

func TestCreateTaskRejectsInvalidAssignee(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	f.activeStaff("ana")
	f.staff("off", domain.StaffRoleStaff, domain.StaffStatusNonActive)
	room := f.room("101")
	f.store.CountPendingCalls = 0

	for _, email := range []string{"ghost@hotel.test", "off@hotel.test", "admin@hotel.test"} {
		t.Run(email, func(t *testing.T) {
			_, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID, AssigneeEmail: email})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeAssigneeInvalid))
			assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
		})
	}
	assert.Empty(t, f.store.Tasks())
	assert.Empty(t, f.store.Notifications())
	assert.Zero(t, f.store.CountPendingCalls)
}

func TestCreateTaskWithoutStaff(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	room := f.room("101")

	_, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoEligibleStaff))
	assert.Empty(t, f.store.Tasks())
	assert.Empty(t, f.store.Notifications())
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	f.activeStaff("ana")
	room := f.room("101")

	_, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID, Kind: domain.TaskKindDelivery})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: "missing"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	staff := f.activeStaff("ben")[0]
	_, err = f.tasks.CreateTask(f.ctx, staff, CreateTaskInput{RoomID: room.ID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestScheduleHousekeepingBalancesWithinBatch(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("ana", "ben")
	rooms := []*domain.Room{f.room("101"), f.room("102"), f.room("103"), f.room("104")}
	f.pendingTasks(staff[0], rooms[0], 1)

	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	at := fixedNow.Add(2 * time.Hour)
	created, err := f.tasks.ScheduleHousekeeping(f.ctx, admin, ScheduleInput{RoomIDs: ids, ScheduledFor: at})

	require.NoError(t, err)
	require.Len(t, created, 4)
	var got []string
	for _, task := range created {
		got = append(got, *task.AssigneeID)
		assert.Equal(t, at, task.ScheduledFor)
	}
	assert.Equal(t, []string{staff[1].ID, staff[0].ID, staff[1].ID, staff[0].ID}, got)
}

func TestScheduleHousekeepingAllRoomsAndRollback(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	f.room("101")
	f.room("102")
	closed := &domain.Room{Number: "103", Type: "suite", PricePerNight: 300, Capacity: 2, Status: domain.RoomStatusMaintenance}
	require.NoError(t, f.repos.Rooms.Create(f.ctx, closed))

	_, err := f.tasks.ScheduleHousekeeping(f.ctx, admin, ScheduleInput{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoEligibleStaff))
	assert.Empty(t, f.store.Tasks())

	f.activeStaff("ana")
	created, err := f.tasks.ScheduleHousekeeping(f.ctx, admin, ScheduleInput{})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestCompleteHousekeepingStampsRoom(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("ana", "ben")
	room := f.room("101")
	task, err := f.tasks.CreateTask(f.ctx, admin, CreateTaskInput{RoomID: room.ID, AssigneeEmail: "ana@hotel.test"})
	require.NoError(t, err)

	_, err = f.tasks.CompleteTask(f.ctx, staff[1], task.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	done, err := f.tasks.CompleteTask(f.ctx, staff[0], task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	stored, err := f.repos.Rooms.GetByID(f.ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastCleanedAt)
	assert.Equal(t, fixedNow, *stored.LastCleanedAt)

	assert.Len(t, f.notificationsTo("gm@hotel.test"), 1)
	assert.Len(t, f.notificationsTo("admin@hotel.test"), 1)
	assert.Equal(t, []string{"staff"}, f.published.topics(string(events.EventTaskCompleted)))

	_, err = f.tasks.CompleteTask(f.ctx, staff[0], task.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCompleteDeliveryMarksOrderDelivered(t *testing.T) {
	f := newFixture(t)
	ana := f.activeStaff("ana")[0]
	guest, _ := f.checkedIn("gina", "101")
	soup := f.menuItem("Soup", 5)
	order, task, err := f.placeOrder(guest.ID, soup)
	require.NoError(t, err)

	_, err = f.tasks.CompleteTask(f.ctx, ana, task.ID)
	require.NoError(t, err)

	stored, err := f.repos.Orders.GetByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)
	assert.Len(t, f.notificationsTo("gm@hotel.test"), 1)
}

func TestListTasks(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	staff := f.activeStaff("ana", "ben")
	room := f.room("101")
	f.pendingTasks(staff[0], room, 2)
	f.pendingTasks(staff[1], room, 1)

	mine, err := f.tasks.ListForStaff(f.ctx, staff[0], []domain.TaskStatus{domain.TaskStatusPending}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.tasks.ListTasks(f.ctx, admin, TaskListFilter{RoomID: &room.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.tasks.ListTasks(f.ctx, staff[0], TaskListFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
