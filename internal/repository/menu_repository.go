package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// MenuRepository persists the room service menu.
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	List(ctx context.Context, includeUnavailable bool, limit, offset int) ([]domain.MenuItem, error)
}

const menuColumns = `id, name, description, price, available, created_at, updated_at`

type menuRepository struct {
	q Querier
}

// NewMenuRepository constructs repository.
func NewMenuRepository(q Querier) MenuRepository {
	return &menuRepository{q: q}
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	const query = `
        INSERT INTO menu_items (name, description, price, available)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query, item.Name, item.Description, item.Price, item.Available).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	const query = `
        UPDATE menu_items SET name=$1, description=$2, price=$3, available=$4, updated_at=NOW()
        WHERE id=$5`
	return execAffecting(ctx, r.q, query, item.Name, item.Description, item.Price, item.Available, item.ID)
}

func (r *menuRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	return scanMenuItem(r.q.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id=$1`, id))
}

func (r *menuRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	items := make(map[string]domain.MenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = *item
	}
	return items, rows.Err()
}

func (r *menuRepository) List(ctx context.Context, includeUnavailable bool, limit, offset int) ([]domain.MenuItem, error) {
	limit, offset = normalizePage(limit, offset)
	query := `SELECT ` + menuColumns + ` FROM menu_items`
	if !includeUnavailable {
		query += ` WHERE available`
	}
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
