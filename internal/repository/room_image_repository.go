package repository

import (
	"context"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// RoomImageRepository persists uploaded room photo metadata.
type RoomImageRepository interface {
	Create(ctx context.Context, img *domain.RoomImage) error
	GetByID(ctx context.Context, id string) (*domain.RoomImage, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.RoomImage, error)
	Delete(ctx context.Context, id string) error
}

type roomImageRepository struct {
	q Querier
}

// NewRoomImageRepository constructs repository.
func NewRoomImageRepository(q Querier) RoomImageRepository {
	return &roomImageRepository{q: q}
}

func (r *roomImageRepository) Create(ctx context.Context, img *domain.RoomImage) error {
	const query = `
        INSERT INTO room_images (room_id, storage_key, url, width, height)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query, img.RoomID, img.StorageKey, img.URL, img.Width, img.Height).
		Scan(&img.ID, &img.CreatedAt)
}

func (r *roomImageRepository) GetByID(ctx context.Context, id string) (*domain.RoomImage, error) {
	const query = `
        SELECT id, room_id, storage_key, url, width, height, created_at
        FROM room_images WHERE id=$1`
	var img domain.RoomImage
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.RoomID, &img.StorageKey, &img.URL, &img.Width, &img.Height, &img.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *roomImageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.RoomImage, error) {
	const query = `
        SELECT id, room_id, storage_key, url, width, height, created_at
        FROM room_images WHERE room_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoomImage
	for rows.Next() {
		var img domain.RoomImage
		if err := rows.Scan(&img.ID, &img.RoomID, &img.StorageKey, &img.URL, &img.Width, &img.Height, &img.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	return result, rows.Err()
}

func (r *roomImageRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.q, `DELETE FROM room_images WHERE id=$1`, id)
}
