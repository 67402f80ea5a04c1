package events

import (
	"time"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// EventType enumerates supported event identifiers. The values double as the
// realtime wire names.
type EventType string

const (
	EventOrderPlaced   EventType = "order.placed"
	EventTaskAssigned  EventType = "task.assigned"
	EventTaskCompleted EventType = "task.completed"
	EventChatMessage   EventType = "chat.message"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type domain.AuthorType `json:"type"`
	ID   *string           `json:"id,omitempty"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID        string  `json:"order_id"`
	BookingID      string  `json:"booking_id"`
	RoomID         string  `json:"room_id"`
	Total          float64 `json:"total"`
	DeliveryTaskID string  `json:"delivery_task_id"`
	AssigneeID     string  `json:"assignee_staff_id"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	TaskID       string          `json:"task_id"`
	Kind         domain.TaskKind `json:"kind"`
	RoomID       string          `json:"room_id"`
	AssigneeID   string          `json:"assignee_staff_id"`
	Policy       string          `json:"policy"`
	ScheduledFor time.Time       `json:"scheduled_for"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	TaskID      string          `json:"task_id"`
	Kind        domain.TaskKind `json:"kind"`
	RoomID      string          `json:"room_id"`
	OrderID     *string         `json:"order_id,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// ChatMessagePayload payload.
type ChatMessagePayload struct {
	MessageID  string            `json:"message_id"`
	BookingID  string            `json:"booking_id"`
	AuthorType domain.AuthorType `json:"author_type"`
	AuthorID   string            `json:"author_id"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}
