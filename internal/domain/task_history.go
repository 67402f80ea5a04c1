package domain

import "time"

// TaskChangeType captures what changed in a history entry.
type TaskChangeType string

const (
	ChangeTypeAssigned  TaskChangeType = "ASSIGNED"
	ChangeTypeCompleted TaskChangeType = "COMPLETED"
)

// TaskHistory is an immutable audit trail entry.
type TaskHistory struct {
	ID            string
	TaskID        string
	ChangedByType AuthorType
	ChangedByID   *string
	ChangeType    TaskChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
