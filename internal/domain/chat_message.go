package domain

import "time"

// AuthorType indicates who authored a message or change.
type AuthorType string

const (
	AuthorTypeUser   AuthorType = "USER"
	AuthorTypeStaff  AuthorType = "STAFF"
	AuthorTypeSystem AuthorType = "SYSTEM"
)

// ChatMessage is one message in a booking's guest/staff thread.
type ChatMessage struct {
	ID         string
	BookingID  string
	AuthorType AuthorType
	AuthorID   string
	Body       string
	CreatedAt  time.Time
}
