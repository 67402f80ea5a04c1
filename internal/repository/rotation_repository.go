package repository

import (
	"context"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// RotationRepository persists round-robin cursors.
type RotationRepository interface {
	// Get returns pgx.ErrNoRows when the cursor was never written.
	Get(ctx context.Context, name string) (*domain.RotationPointer, error)
	// CompareAndSwap moves the cursor from prev to next. An empty prev means the
	// cursor must not exist yet. It reports false when another writer won.
	CompareAndSwap(ctx context.Context, name, prev, next string) (bool, error)
}

type rotationRepository struct {
	q Querier
}

// NewRotationRepository constructs repository.
func NewRotationRepository(q Querier) RotationRepository {
	return &rotationRepository{q: q}
}

func (r *rotationRepository) Get(ctx context.Context, name string) (*domain.RotationPointer, error) {
	const query = `SELECT name, staff_id, updated_at FROM rotation_pointers WHERE name=$1`
	var ptr domain.RotationPointer
	if err := r.q.QueryRow(ctx, query, name).Scan(&ptr.Name, &ptr.StaffID, &ptr.UpdatedAt); err != nil {
		return nil, err
	}
	return &ptr, nil
}

func (r *rotationRepository) CompareAndSwap(ctx context.Context, name, prev, next string) (bool, error) {
	if prev == "" {
		const insert = `
            INSERT INTO rotation_pointers (name, staff_id)
            VALUES ($1, $2)
            ON CONFLICT (name) DO NOTHING`
		cmd, err := r.q.Exec(ctx, insert, name, next)
		if err != nil {
			return false, err
		}
		return cmd.RowsAffected() == 1, nil
	}

	const update = `
        UPDATE rotation_pointers SET staff_id=$3, updated_at=NOW()
        WHERE name=$1 AND staff_id=$2`
	cmd, err := r.q.Exec(ctx, update, name, prev, next)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
