package service

import (
	"context"
	"strings"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// MenuItemInput carries editable menu attributes.
type MenuItemInput struct {
	Name        string
	Description string
	Price       float64
	Available   bool
}

// MenuService manages the room-service menu.
type MenuService struct {
	menu repository.MenuRepository
}

// NewMenuService constructs the service.
func NewMenuService(menu repository.MenuRepository) *MenuService {
	return &MenuService{menu: menu}
}

func validateMenuItem(input MenuItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if input.Price <= 0 {
		return apperrors.NewValidationError("price must be positive", nil)
	}
	return nil
}

// Create adds a menu item.
func (s *MenuService) Create(ctx context.Context, actor *domain.StaffMember, input MenuItemInput) (*domain.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateMenuItem(input); err != nil {
		return nil, err
	}
	item := &domain.MenuItem{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Available:   input.Available,
	}
	if err := s.menu.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// Update replaces a menu item's attributes.
func (s *MenuService) Update(ctx context.Context, actor *domain.StaffMember, id string, input MenuItemInput) (*domain.MenuItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateMenuItem(input); err != nil {
		return nil, err
	}
	item, err := s.menu.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "menu item", map[string]any{"menu_item_id": id})
	}
	item.Name = strings.TrimSpace(input.Name)
	item.Description = strings.TrimSpace(input.Description)
	item.Price = input.Price
	item.Available = input.Available
	if err := s.menu.Update(ctx, item); err != nil {
		return nil, notFoundOr(err, "menu item", map[string]any{"menu_item_id": id})
	}
	return item, nil
}

// List returns menu items; guests only see available ones.
func (s *MenuService) List(ctx context.Context, includeUnavailable bool, limit, offset int) ([]domain.MenuItem, error) {
	items, err := s.menu.List(ctx, includeUnavailable, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}
