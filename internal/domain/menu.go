package domain

import "time"

// MenuItem is a dish or drink guests can order to their room.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
