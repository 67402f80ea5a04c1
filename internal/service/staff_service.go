package service

import (
	"context"
	"strings"

	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// StaffService manages back-office accounts.
type StaffService struct {
	staff      repository.StaffRepository
	bcryptCost int
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.StaffRole
	Status *domain.StaffStatus
	Limit  int
	Offset int
}

// CreateStaffInput describes a new account.
type CreateStaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
}

// UpdateStaffInput carries optional changes.
type UpdateStaffInput struct {
	Name   *string
	Role   *domain.StaffRole
	Status *domain.StaffStatus
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.AuthConfig, staff repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff, bcryptCost: cfg.BcryptCost}
}

func validRole(r domain.StaffRole) bool {
	return r == domain.StaffRoleStaff || r == domain.StaffRoleAdmin
}

func validStatus(s domain.StaffStatus) bool {
	return s == domain.StaffStatusActive || s == domain.StaffStatusNonActive
}

// CreateStaff creates an active staff or admin account.
func (s *StaffService) CreateStaff(ctx context.Context, actor *domain.StaffMember, input CreateStaffInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.StaffRoleStaff
	}
	if !validRole(input.Role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if strings.TrimSpace(input.Name) == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("name and a valid email are required", nil)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	member := &domain.StaffMember{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.StaffStatusActive,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		}
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// UpdateStaff applies role, status or name changes. Admins cannot deactivate
// or demote themselves.
func (s *StaffService) UpdateStaff(ctx context.Context, actor *domain.StaffMember, id string, input UpdateStaffInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "staff", map[string]any{"staff_id": id})
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		member.Name = name
	}
	if input.Role != nil {
		if !validRole(*input.Role) {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		member.Role = *input.Role
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		member.Status = *input.Status
	}
	if member.ID == actor.ID && (member.Role != domain.StaffRoleAdmin || !member.Active()) {
		return nil, apperrors.NewConflict("admins cannot demote or deactivate themselves", nil)
	}
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, notFoundOr(err, "staff", map[string]any{"staff_id": id})
	}
	return member, nil
}

// GetStaff returns one account.
func (s *StaffService) GetStaff(ctx context.Context, actor *domain.StaffMember, id string) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "staff", map[string]any{"staff_id": id})
	}
	return member, nil
}

// ListStaff returns accounts matching filters.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.StaffMember, filters StaffListFilters) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	members, err := s.staff.List(ctx, repository.StaffFilter{
		Role:   filters.Role,
		Status: filters.Status,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}
