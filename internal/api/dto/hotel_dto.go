package dto

import (
	"time"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// RoomRequest payload for creating or replacing a room.
type RoomRequest struct {
	Number        string            `json:"number"`
	Type          string            `json:"type"`
	Description   string            `json:"description"`
	PricePerNight float64           `json:"price_per_night"`
	Capacity      int               `json:"capacity"`
	Status        domain.RoomStatus `json:"status"`
}

// RoomResponse describes a room and its photos.
type RoomResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Type          string              `json:"type"`
	Description   string              `json:"description"`
	PricePerNight float64             `json:"price_per_night"`
	Capacity      int                 `json:"capacity"`
	Status        domain.RoomStatus   `json:"status"`
	LastCleanedAt *time.Time          `json:"last_cleaned_at"`
	Images        []RoomImageResponse `json:"images"`
}

// RoomImageResponse metadata.
type RoomImageResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// BookingRequest payload. Dates are RFC 3339 or YYYY-MM-DD.
type BookingRequest struct {
	RoomID   string `json:"room_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

// BookingResponse describes a reservation.
type BookingResponse struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	RoomID    string               `json:"room_id"`
	CheckIn   time.Time            `json:"check_in"`
	CheckOut  time.Time            `json:"check_out"`
	Guests    int                  `json:"guests"`
	Nights    int                  `json:"nights"`
	Status    domain.BookingStatus `json:"status"`
	Total     float64              `json:"total"`
	CreatedAt time.Time            `json:"created_at"`
}

// MenuItemRequest payload.
type MenuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   *bool   `json:"available"`
}

// MenuItemResponse describes a menu entry.
type MenuItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
}

// OrderLineRequest is one requested dish.
type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// OrderRequest payload for placing a room-service order.
type OrderRequest struct {
	Items []OrderLineRequest `json:"items"`
	Notes string             `json:"notes"`
}

// OrderItemResponse is a priced order line.
type OrderItemResponse struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

// OrderResponse describes an order and, once placed, its delivery task.
type OrderResponse struct {
	ID             string              `json:"id"`
	BookingID      string              `json:"booking_id"`
	RoomID         string              `json:"room_id"`
	Items          []OrderItemResponse `json:"items"`
	Total          float64             `json:"total"`
	Notes          string              `json:"notes,omitempty"`
	Status         domain.OrderStatus  `json:"status"`
	DeliveryTaskID *string             `json:"delivery_task_id"`
	CreatedAt      time.Time           `json:"created_at"`
	Delivery       *TaskResponse       `json:"delivery,omitempty"`
}

// TaskRequest payload for creating one task. AssigneeEmail bypasses
// least-loaded selection.
type TaskRequest struct {
	Kind          domain.TaskKind `json:"kind"`
	RoomID        string          `json:"room_id"`
	Description   string          `json:"description"`
	ScheduledFor  string          `json:"scheduled_for"`
	AssigneeEmail string          `json:"assignee_email"`
}

// ScheduleRequest payload for bulk housekeeping.
type ScheduleRequest struct {
	RoomIDs      []string `json:"room_ids"`
	ScheduledFor string   `json:"scheduled_for"`
	Description  string   `json:"description"`
}

// TaskResponse describes a unit of staff work.
type TaskResponse struct {
	ID              string            `json:"id"`
	Kind            domain.TaskKind   `json:"kind"`
	AssigneeStaffID *string           `json:"assignee_staff_id"`
	Status          domain.TaskStatus `json:"status"`
	RoomID          string            `json:"room_id"`
	OrderID         *string           `json:"order_id"`
	Description     string            `json:"description"`
	ScheduledFor    time.Time         `json:"scheduled_for"`
	CompletedAt     *time.Time        `json:"completed_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TaskHistoryResponse is one audit entry.
type TaskHistoryResponse struct {
	ID            string                `json:"id"`
	ChangeType    domain.TaskChangeType `json:"change_type"`
	ChangedByType domain.AuthorType     `json:"changed_by_type"`
	ChangedByID   *string               `json:"changed_by_id"`
	OldValue      map[string]any        `json:"old_value,omitempty"`
	NewValue      map[string]any        `json:"new_value,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ChatMessageRequest payload.
type ChatMessageRequest struct {
	Body string `json:"body"`
}

// ChatMessageResponse is one chat line.
type ChatMessageResponse struct {
	ID         string            `json:"id"`
	BookingID  string            `json:"booking_id"`
	AuthorType domain.AuthorType `json:"author_type"`
	AuthorID   string            `json:"author_id"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NotificationResponse describes an outbox row.
type NotificationResponse struct {
	ID            string                    `json:"id"`
	Recipient     string                    `json:"recipient"`
	Subject       string                    `json:"subject"`
	Status        domain.NotificationStatus `json:"status"`
	Attempts      int                       `json:"attempts"`
	LastError     *string                   `json:"last_error"`
	NextAttemptAt *time.Time                `json:"next_attempt_at"`
	SentAt        *time.Time                `json:"sent_at"`
	CreatedAt     time.Time                 `json:"created_at"`
}
