package domain

import "time"

// StaffRole enumerates back-office roles.
type StaffRole string

const (
	StaffRoleStaff StaffRole = "Staff"
	StaffRoleAdmin StaffRole = "Admin"
)

// StaffStatus marks whether an account may log in and receive work.
type StaffStatus string

const (
	StaffStatusActive    StaffStatus = "Active"
	StaffStatusNonActive StaffStatus = "Non-Active"
)

// StaffMember models a staff or admin account.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Status       StaffStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the account is enabled.
func (s *StaffMember) Active() bool {
	return s != nil && s.Status == StaffStatusActive
}

// Assignable reports whether the account may receive tasks.
func (s *StaffMember) Assignable() bool {
	return s.Active() && s.Role == StaffRoleStaff
}
