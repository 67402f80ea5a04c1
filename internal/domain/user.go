package domain

import "time"

// UserStatus represents lifecycle states for a guest account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a hotel guest. Guests book rooms, order from the menu during a
// checked-in stay and chat with the front desk about their booking.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSignIn reports whether the guest may authenticate.
func (u *User) CanSignIn() bool {
	return u != nil && u.Status == UserStatusActive
}
