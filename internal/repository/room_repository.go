package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// RoomFilter narrows room listings.
type RoomFilter struct {
	Type   *string
	Status *domain.RoomStatus
	Limit  int
	Offset int
}

// RoomRepository encapsulates room persistence.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, room *domain.Room) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]domain.Room, error)
	MarkCleaned(ctx context.Context, id string, at time.Time) error
}

const roomColumns = `id, number, type, description, price_per_night, capacity, status, last_cleaned_at, created_at, updated_at`

type roomRepository struct {
	q Querier
}

// NewRoomRepository constructs repository.
func NewRoomRepository(q Querier) RoomRepository {
	return &roomRepository{q: q}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	const query = `
        INSERT INTO rooms (number, type, description, price_per_night, capacity, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		room.Number,
		room.Type,
		room.Description,
		room.PricePerNight,
		room.Capacity,
		room.Status,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	const query = `
        UPDATE rooms SET number=$1, type=$2, description=$3, price_per_night=$4, capacity=$5, status=$6, updated_at=NOW()
        WHERE id=$7`
	return execAffecting(ctx, r.q, query,
		room.Number,
		room.Type,
		room.Description,
		room.PricePerNight,
		room.Capacity,
		room.Status,
		room.ID,
	)
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.q, `DELETE FROM rooms WHERE id=$1`, id)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return scanRoom(r.q.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id))
}

func (r *roomRepository) List(ctx context.Context, filter RoomFilter) ([]domain.Room, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY number ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}
	return result, rows.Err()
}

func (r *roomRepository) MarkCleaned(ctx context.Context, id string, at time.Time) error {
	return execAffecting(ctx, r.q, `UPDATE rooms SET last_cleaned_at=$2, updated_at=NOW() WHERE id=$1`, id, at)
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	if err := row.Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Description,
		&room.PricePerNight,
		&room.Capacity,
		&room.Status,
		&room.LastCleanedAt,
		&room.CreatedAt,
		&room.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &room, nil
}

func execAffecting(ctx context.Context, q Querier, query string, args ...any) error {
	cmd, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
