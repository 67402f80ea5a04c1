package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// ChatRepository stores booking chat threads.
type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]domain.ChatMessage, error)
}

type chatRepository struct {
	q Querier
}

// NewChatRepository constructs repository.
func NewChatRepository(q Querier) ChatRepository {
	return &chatRepository{q: q}
}

func (r *chatRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (booking_id, author_type, author_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query, msg.BookingID, msg.AuthorType, msg.AuthorID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *chatRepository) ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]domain.ChatMessage, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
        SELECT id, booking_id, author_type, author_id, body, created_at
        FROM chat_messages WHERE booking_id=$1` +
		fmt.Sprintf(" ORDER BY created_at ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.BookingID, &m.AuthorType, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
