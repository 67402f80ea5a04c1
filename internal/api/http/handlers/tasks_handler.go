package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/service"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// TasksHandler exposes task scheduling (admins) and task work (staff).
type TasksHandler struct {
	tasks   *service.TaskService
	reports *service.ReportService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(tasks *service.TaskService, reports *service.ReportService) *TasksHandler {
	return &TasksHandler{tasks: tasks, reports: reports}
}

// Create POST /admin/tasks. An assignee_email bypasses least-loaded selection.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	if req.RoomID == "" {
		return apperrors.NewValidationError("room_id required", nil)
	}
	input := service.CreateTaskInput{
		Kind:          req.Kind,
		RoomID:        req.RoomID,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
	}
	if at, err := optionalTime("scheduled_for", req.ScheduledFor); err != nil {
		return err
	} else if at != nil {
		input.ScheduledFor = *at
	}

	task, err := h.tasks.CreateTask(c.UserContext(), admin, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// Schedule POST /admin/tasks/schedule creates one housekeeping task per room.
func (h *TasksHandler) Schedule(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ScheduleRequest
	if err := bodyParse(c, &req); err != nil {
		return err
	}
	input := service.ScheduleInput{RoomIDs: req.RoomIDs, Description: req.Description}
	if at, err := optionalTime("scheduled_for", req.ScheduledFor); err != nil {
		return err
	} else if at != nil {
		input.ScheduledFor = *at
	}

	tasks, err := h.tasks.ScheduleHousekeeping(c.UserContext(), admin, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskList(tasks)})
}

// List GET /admin/tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filter := service.TaskListFilter{
		AssigneeID: optionalQuery(c, "assignee_staff_id"),
		RoomID:     optionalQuery(c, "room_id"),
		Statuses:   taskStatuses(c),
		From:       parseTime(c.Query("from")),
		To:         parseTime(c.Query("to")),
	}
	for _, k := range splitQuery(c, "kind") {
		filter.Kinds = append(filter.Kinds, domain.TaskKind(k))
	}
	filter.Limit, filter.Offset = page(c, 50)

	tasks, err := h.tasks.ListTasks(c.UserContext(), admin, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskList(tasks)})
}

// History GET /admin/tasks/:id/history.
func (h *TasksHandler) History(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.tasks.History(c.UserContext(), admin, id)
	if err != nil {
		return err
	}
	resp := make([]dto.TaskHistoryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Report GET /admin/reports/tasks.pdf.
func (h *TasksHandler) Report(c *fiber.Ctx) error {
	admin, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	body, err := h.reports.TaskReport(c.UserContext(), admin,
		parseTime(c.Query("from")), parseTime(c.Query("to")), taskStatuses(c))
	if err != nil {
		return err
	}
	return sendPDF(c, "tasks-"+time.Now().UTC().Format(dateLayout)+".pdf", body)
}

// ListMine GET /staff/tasks.
func (h *TasksHandler) ListMine(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := page(c, 50)
	tasks, err := h.tasks.ListForStaff(c.UserContext(), staff, taskStatuses(c), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskList(tasks)})
}

// Complete POST /staff/tasks/:id/complete.
func (h *TasksHandler) Complete(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.tasks.CompleteTask(c.UserContext(), staff, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

func taskStatuses(c *fiber.Ctx) []domain.TaskStatus {
	var out []domain.TaskStatus
	for _, s := range splitQuery(c, "status") {
		out = append(out, domain.TaskStatus(s))
	}
	return out
}

func optionalTime(field, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	t, err := requireTime(field, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
