package dto

import (
	"time"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// StaffCreateRequest payload for new back-office accounts.
type StaffCreateRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// StaffUpdateRequest carries optional account changes.
type StaffUpdateRequest struct {
	Name   *string             `json:"name"`
	Role   *domain.StaffRole   `json:"role"`
	Status *domain.StaffStatus `json:"status"`
}

// StaffResponse is the public view of a staff account.
type StaffResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      domain.StaffRole   `json:"role"`
	Status    domain.StaffStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}
