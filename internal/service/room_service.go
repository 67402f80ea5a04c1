package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/media"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// RoomInput carries editable room attributes.
type RoomInput struct {
	Number        string
	Type          string
	Description   string
	PricePerNight float64
	Capacity      int
	Status        domain.RoomStatus
}

// RoomService manages rooms and their photos.
type RoomService struct {
	repos  repository.Repositories
	images media.Store
	logger *zap.Logger
}

// NewRoomService constructs the service.
func NewRoomService(repos repository.Repositories, images media.Store, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repos: repos, images: images, logger: logger}
}

func (in *RoomInput) normalize() error {
	in.Number = strings.TrimSpace(in.Number)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Number == "" || in.Type == "" {
		return apperrors.NewValidationError("number and type are required", nil)
	}
	if in.PricePerNight <= 0 {
		return apperrors.NewValidationError("price_per_night must be positive", nil)
	}
	if in.Capacity <= 0 {
		in.Capacity = 2
	}
	switch in.Status {
	case "":
		in.Status = domain.RoomStatusAvailable
	case domain.RoomStatusAvailable, domain.RoomStatusMaintenance:
	default:
		return apperrors.NewValidationError("unknown room status", map[string]any{"status": in.Status})
	}
	return nil
}

// Create adds a room.
func (s *RoomService) Create(ctx context.Context, actor *domain.StaffMember, input RoomInput) (*domain.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}
	room := &domain.Room{
		Number:        input.Number,
		Type:          input.Type,
		Description:   strings.TrimSpace(input.Description),
		PricePerNight: input.PricePerNight,
		Capacity:      input.Capacity,
		Status:        input.Status,
	}
	if err := s.repos.Rooms.Create(ctx, room); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("room number already exists", map[string]any{"number": input.Number})
		}
		return nil, apperrors.MapError(err)
	}
	return room, nil
}

// Update replaces editable attributes.
func (s *RoomService) Update(ctx context.Context, actor *domain.StaffMember, id string, input RoomInput) (*domain.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}
	room, err := s.repos.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "room", map[string]any{"room_id": id})
	}
	room.Number = input.Number
	room.Type = input.Type
	room.Description = strings.TrimSpace(input.Description)
	room.PricePerNight = input.PricePerNight
	room.Capacity = input.Capacity
	room.Status = input.Status
	if err := s.repos.Rooms.Update(ctx, room); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("room number already exists", map[string]any{"number": input.Number})
		}
		return nil, notFoundOr(err, "room", map[string]any{"room_id": id})
	}
	return s.withImages(ctx, room)
}

// Delete removes a room and its photo files.
func (s *RoomService) Delete(ctx context.Context, actor *domain.StaffMember, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	images, err := s.repos.RoomImages.ListByRoom(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.repos.Rooms.Delete(ctx, id); err != nil {
		return notFoundOr(err, "room", map[string]any{"room_id": id})
	}
	for _, img := range images {
		if err := s.images.Delete(img.StorageKey); err != nil {
			s.logger.Warn("remove room image file", zap.String("key", img.StorageKey), zap.Error(err))
		}
	}
	return nil
}

// Get returns a room with its images.
func (s *RoomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	room, err := s.repos.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "room", map[string]any{"room_id": id})
	}
	return s.withImages(ctx, room)
}

// List returns rooms with their images.
func (s *RoomService) List(ctx context.Context, filter repository.RoomFilter) ([]domain.Room, error) {
	rooms, err := s.repos.Rooms.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range rooms {
		images, err := s.repos.RoomImages.ListByRoom(ctx, rooms[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		rooms[i].Images = images
	}
	return rooms, nil
}

func (s *RoomService) withImages(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	images, err := s.repos.RoomImages.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	room.Images = images
	return room, nil
}

// AddImage resizes and stores a photo for the room.
func (s *RoomService) AddImage(ctx context.Context, actor *domain.StaffMember, roomID string, src io.Reader) (*domain.RoomImage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	room, err := s.repos.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room", map[string]any{"room_id": roomID})
	}
	stored, err := s.images.Save("room-"+room.Number, src)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return nil, apperrors.NewValidationError("file is not a supported image", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	img := &domain.RoomImage{
		RoomID:     room.ID,
		StorageKey: stored.Key,
		URL:        stored.URL,
		Width:      stored.Width,
		Height:     stored.Height,
	}
	if err := s.repos.RoomImages.Create(ctx, img); err != nil {
		if rmErr := s.images.Delete(stored.Key); rmErr != nil {
			s.logger.Warn("remove orphaned image", zap.String("key", stored.Key), zap.Error(rmErr))
		}
		return nil, apperrors.MapError(err)
	}
	return img, nil
}

// DeleteImage removes one photo of a room.
func (s *RoomService) DeleteImage(ctx context.Context, actor *domain.StaffMember, roomID, imageID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	img, err := s.repos.RoomImages.GetByID(ctx, imageID)
	if err != nil {
		return notFoundOr(err, "room image", map[string]any{"image_id": imageID})
	}
	if img.RoomID != roomID {
		return apperrors.NewNotFound("room image", map[string]any{"image_id": imageID})
	}
	if err := s.repos.RoomImages.Delete(ctx, imageID); err != nil {
		return notFoundOr(err, "room image", map[string]any{"image_id": imageID})
	}
	if err := s.images.Delete(img.StorageKey); err != nil {
		s.logger.Warn("remove room image file", zap.String("key", img.StorageKey), zap.Error(err))
	}
	return nil
}
