package domain

import "time"

// RoomStatus enumerates room availability.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// Room is a bookable hotel room.
type Room struct {
	ID            string
	Number        string
	Type          string
	Description   string
	PricePerNight float64
	Capacity      int
	Status        RoomStatus
	LastCleanedAt *time.Time
	Images        []RoomImage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoomImage references an uploaded room photo.
type RoomImage struct {
	ID         string
	RoomID     string
	StorageKey string
	URL        string
	Width      int
	Height     int
	CreatedAt  time.Time
}
