package domain

import "time"

// OrderStatus enumerates food order states.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a guest food order delivered to a room.
type Order struct {
	ID             string
	UserID         string
	BookingID      string
	RoomID         string
	Items          []OrderItem
	Total          float64
	Notes          string
	Status         OrderStatus
	DeliveryTaskID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem is a priced line of an order.
type OrderItem struct {
	MenuItemID string
	Name       string
	UnitPrice  float64
	Quantity   int
}
