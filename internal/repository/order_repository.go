package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// OrderRepository persists food orders and their lines.
type OrderRepository interface {
	// Create stores the order with its items. Call inside a transaction.
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
}

const orderColumns = `id, user_id, booking_id, room_id, total, notes, status, delivery_task_id, created_at, updated_at`

type orderRepository struct {
	q Querier
}

// NewOrderRepository constructs repository.
func NewOrderRepository(q Querier) OrderRepository {
	return &orderRepository{q: q}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (user_id, booking_id, room_id, total, notes, status, delivery_task_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := r.q.QueryRow(ctx, query,
		order.UserID,
		order.BookingID,
		order.RoomID,
		order.Total,
		order.Notes,
		order.Status,
		order.DeliveryTaskID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	const itemQuery = `
        INSERT INTO order_items (order_id, menu_item_id, name, unit_price, quantity)
        VALUES ($1,$2,$3,$4,$5)`
	for _, item := range order.Items {
		if _, err := r.q.Exec(ctx, itemQuery, order.ID, item.MenuItemID, item.Name, item.UnitPrice, item.Quantity); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	const query = `
        UPDATE orders SET status=$1, delivery_task_id=$2, notes=$3, updated_at=NOW()
        WHERE id=$4`
	return execAffecting(ctx, r.q, query, order.Status, order.DeliveryTaskID, order.Notes, order.ID)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.items(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	limit, offset = normalizePage(limit, offset)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1` +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, *order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].Items, err = r.items(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *orderRepository) items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
        SELECT menu_item_id, name, unit_price, quantity
        FROM order_items WHERE order_id=$1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.BookingID,
		&o.RoomID,
		&o.Total,
		&o.Notes,
		&o.Status,
		&o.DeliveryTaskID,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
