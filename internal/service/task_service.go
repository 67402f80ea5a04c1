package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// CreateTaskInput describes a manually created housekeeping or maintenance task.
type CreateTaskInput struct {
	Kind          domain.TaskKind
	RoomID        string
	Description   string
	ScheduledFor  time.Time
	AssigneeEmail string
}

// ScheduleInput describes bulk housekeeping scheduling. An empty RoomIDs
// schedules every available room.
type ScheduleInput struct {
	RoomIDs      []string
	ScheduledFor time.Time
	Description  string
}

// TaskListFilter narrows task listings.
type TaskListFilter struct {
	AssigneeID *string
	RoomID     *string
	Kinds      []domain.TaskKind
	Statuses   []domain.TaskStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TaskService schedules, lists and completes staff tasks.
type TaskService struct {
	repos       repository.Repositories
	tx          repository.TxRunner
	assignments *AssignmentService
	dispatcher  events.Dispatcher
	adminEmails []string
	logger      *zap.Logger
	now         func() time.Time
}

// TaskDependencies bundles collaborators.
type TaskDependencies struct {
	Repos       repository.Repositories
	Tx          repository.TxRunner
	Assignments *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(cfg config.NotificationConfig, deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		repos:       deps.Repos,
		tx:          deps.Tx,
		assignments: deps.Assignments,
		dispatcher:  deps.Dispatcher,
		adminEmails: cfg.AdminEmails,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateTask stores a task bound to the explicit assignee or, when none is
// given, to the least loaded active staff member.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.StaffMember, input CreateTaskInput) (*domain.Task, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Kind == "" {
		input.Kind = domain.TaskKindHousekeeping
	}
	if !input.Kind.Valid() || input.Kind == domain.TaskKindDelivery {
		return nil, apperrors.NewValidationError("kind must be housekeeping or maintenance", map[string]any{"kind": input.Kind})
	}
	if input.RoomID == "" {
		return nil, apperrors.NewValidationError("room_id is required", nil)
	}
	if input.ScheduledFor.IsZero() {
		input.ScheduledFor = s.now().UTC()
	}

	var (
		task *domain.Task
		res  *Resolution
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		room, err := repos.Rooms.GetByID(ctx, input.RoomID)
		if err != nil {
			return notFoundOr(err, "room", map[string]any{"room_id": input.RoomID})
		}
		res, err = s.assignments.ResolveLeastLoaded(ctx, repos, input.AssigneeEmail)
		if err != nil {
			return err
		}
		task, err = s.createAssigned(ctx, repos, actor, room, input.Kind, input.Description, input.ScheduledFor, res)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssigned(ctx, actor, task, res)
	return task, nil
}

// ScheduleHousekeeping creates one housekeeping task per room in a single
// transaction so each pick sees the load added by the previous ones.
func (s *TaskService) ScheduleHousekeeping(ctx context.Context, actor *domain.StaffMember, input ScheduleInput) ([]domain.Task, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.ScheduledFor.IsZero() {
		input.ScheduledFor = s.now().UTC()
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "Scheduled housekeeping"
	}

	var (
		created     []domain.Task
		resolutions []*Resolution
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rooms, err := s.roomsToSchedule(ctx, repos, input.RoomIDs)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			return apperrors.NewValidationError("no rooms to schedule", nil)
		}
		for i := range rooms {
			res, err := s.assignments.ResolveLeastLoaded(ctx, repos, "")
			if err != nil {
				return err
			}
			task, err := s.createAssigned(ctx, repos, actor, &rooms[i], domain.TaskKindHousekeeping, description, input.ScheduledFor, res)
			if err != nil {
				return err
			}
			created = append(created, *task)
			resolutions = append(resolutions, res)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range created {
		s.publishAssigned(ctx, actor, &created[i], resolutions[i])
	}
	return created, nil
}

func (s *TaskService) roomsToSchedule(ctx context.Context, repos repository.Repositories, ids []string) ([]domain.Room, error) {
	if len(ids) == 0 {
		status := domain.RoomStatusAvailable
		return repos.Rooms.List(ctx, repository.RoomFilter{Status: &status, Limit: 500})
	}
	seen := make(map[string]struct{}, len(ids))
	rooms := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		room, err := repos.Rooms.GetByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "room", map[string]any{"room_id": id})
		}
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

func (s *TaskService) createAssigned(ctx context.Context, repos repository.Repositories, actor *domain.StaffMember, room *domain.Room, kind domain.TaskKind, description string, at time.Time, res *Resolution) (*domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("%s for room %s", capitalize(string(kind)), room.Number)
	}
	task := &domain.Task{
		Kind:         kind,
		AssigneeID:   &res.Staff.ID,
		Status:       domain.TaskStatusPending,
		RoomID:       room.ID,
		Description:  description,
		ScheduledFor: at.UTC(),
	}
	if err := repos.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	if err := recordAssignment(ctx, repos.TaskHistory, staffActor(actor.ID), task, string(res.Policy)); err != nil {
		return nil, err
	}
	subject := fmt.Sprintf("New %s task for room %s", kind, room.Number)
	body := fmt.Sprintf("%s\nScheduled for %s.", description, task.ScheduledFor.Format(time.RFC1123))
	if err := enqueueMail(ctx, repos.Notifications, res.Staff.Email, subject, body); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) publishAssigned(ctx context.Context, actor *domain.StaffMember, task *domain.Task, res *Resolution) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventTaskAssigned,
		Actor: staffActor(actor.ID),
		Payload: events.TaskAssignedPayload{
			TaskID:       task.ID,
			Kind:         task.Kind,
			RoomID:       task.RoomID,
			AssigneeID:   res.Staff.ID,
			Policy:       string(res.Policy),
			ScheduledFor: task.ScheduledFor,
		},
	})
}

// CompleteTask marks a pending task done and applies its side effects:
// housekeeping stamps the room, delivery marks the order delivered, and the
// administrators are notified.
func (s *TaskService) CompleteTask(ctx context.Context, actor *domain.StaffMember, taskID string) (*domain.Task, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	now := s.now().UTC()

	var (
		task *domain.Task
		room *domain.Room
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		t, err := repos.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "task", map[string]any{"task_id": taskID})
		}
		if !t.AssignedTo(actor.ID) && actor.Role != domain.StaffRoleAdmin {
			return apperrors.NewForbidden("task is assigned to someone else")
		}
		if t.Status != domain.TaskStatusPending {
			return apperrors.NewConflict("task already completed", map[string]any{"task_id": taskID})
		}

		t.Status = domain.TaskStatusCompleted
		t.CompletedAt = &now
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return err
		}
		if err := repos.TaskHistory.Create(ctx, &domain.TaskHistory{
			TaskID:        t.ID,
			ChangedByType: domain.AuthorTypeStaff,
			ChangedByID:   &actor.ID,
			ChangeType:    domain.ChangeTypeCompleted,
			OldValue:      map[string]any{"status": domain.TaskStatusPending},
			NewValue:      map[string]any{"status": domain.TaskStatusCompleted},
		}); err != nil {
			return err
		}

		switch t.Kind {
		case domain.TaskKindHousekeeping:
			if err := repos.Rooms.MarkCleaned(ctx, t.RoomID, now); err != nil {
				return notFoundOr(err, "room", map[string]any{"room_id": t.RoomID})
			}
		case domain.TaskKindDelivery:
			if t.OrderID != nil {
				if err := markDelivered(ctx, repos, *t.OrderID); err != nil {
					return err
				}
			}
		}

		room, err = repos.Rooms.GetByID(ctx, t.RoomID)
		if err != nil {
			return notFoundOr(err, "room", map[string]any{"room_id": t.RoomID})
		}
		if err := s.notifyAdmins(ctx, repos, actor, t, room); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:  events.EventTaskCompleted,
		Actor: staffActor(actor.ID),
		Payload: events.TaskCompletedPayload{
			TaskID:      task.ID,
			Kind:        task.Kind,
			RoomID:      room.ID,
			OrderID:     task.OrderID,
			CompletedAt: now,
		},
	})
	return task, nil
}

func markDelivered(ctx context.Context, repos repository.Repositories, orderID string) error {
	order, err := repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return notFoundOr(err, "order", map[string]any{"order_id": orderID})
	}
	if order.Status != domain.OrderStatusPlaced {
		return nil
	}
	order.Status = domain.OrderStatusDelivered
	return repos.Orders.Update(ctx, order)
}

func (s *TaskService) notifyAdmins(ctx context.Context, repos repository.Repositories, actor *domain.StaffMember, task *domain.Task, room *domain.Room) error {
	role := domain.StaffRoleAdmin
	status := domain.StaffStatusActive
	admins, err := repos.Staff.List(ctx, repository.StaffFilter{Role: &role, Status: &status, Limit: 500})
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(admins)+len(s.adminEmails))
	seen := map[string]struct{}{}
	add := func(email string) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}
	for _, e := range s.adminEmails {
		add(e)
	}
	for _, a := range admins {
		add(a.Email)
	}

	subject := fmt.Sprintf("Room %s: %s task completed", room.Number, task.Kind)
	body := fmt.Sprintf("%s completed \"%s\" at %s.", actor.Name, task.Description, task.CompletedAt.Format(time.RFC1123))
	for _, to := range recipients {
		if err := enqueueMail(ctx, repos.Notifications, to, subject, body); err != nil {
			return err
		}
	}
	return nil
}

// ListTasks returns tasks for the back office.
func (s *TaskService) ListTasks(ctx context.Context, actor *domain.StaffMember, filter TaskListFilter) ([]domain.Task, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListForStaff returns the caller's own tasks.
func (s *TaskService) ListForStaff(ctx context.Context, actor *domain.StaffMember, statuses []domain.TaskStatus, limit, offset int) ([]domain.Task, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return s.list(ctx, TaskListFilter{
		AssigneeID: &actor.ID,
		Statuses:   statuses,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *TaskService) list(ctx context.Context, filter TaskListFilter) ([]domain.Task, error) {
	tasks, err := s.repos.Tasks.List(ctx, repository.TaskFilter{
		AssigneeID:    filter.AssigneeID,
		RoomID:        filter.RoomID,
		Kinds:         filter.Kinds,
		Statuses:      filter.Statuses,
		ScheduledFrom: filter.From,
		ScheduledTo:   filter.To,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// History returns the audit trail of a task.
func (s *TaskService) History(ctx context.Context, actor *domain.StaffMember, taskID string) ([]domain.TaskHistory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.repos.Tasks.GetByID(ctx, taskID); err != nil {
		return nil, notFoundOr(err, "task", map[string]any{"task_id": taskID})
	}
	history, err := s.repos.TaskHistory.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
