package domain

import "time"

// TaskKind enumerates the work a task represents.
type TaskKind string

const (
	TaskKindDelivery     TaskKind = "delivery"
	TaskKindHousekeeping TaskKind = "housekeeping"
	TaskKindMaintenance  TaskKind = "maintenance"
)

// Valid reports whether k is a known task kind.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindDelivery, TaskKindHousekeeping, TaskKindMaintenance:
		return true
	}
	return false
}

// TaskStatus enumerates task lifecycle states. An unassigned task has a nil AssigneeID.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a unit of work bound to one staff member.
type Task struct {
	ID           string
	Kind         TaskKind
	AssigneeID   *string
	Status       TaskStatus
	RoomID       string
	OrderID      *string
	Description  string
	ScheduledFor time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AssignedTo reports whether staffID is the task's assignee.
func (t *Task) AssignedTo(staffID string) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == staffID
}

// RotationPointer is the persisted round-robin cursor.
type RotationPointer struct {
	Name      string
	StaffID   string
	UpdatedAt time.Time
}

// RotationOrderDelivery names the cursor used by order delivery assignment.
const RotationOrderDelivery = "order_delivery"
