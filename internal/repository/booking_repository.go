package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// BookingFilter narrows booking listings.
type BookingFilter struct {
	UserID   *string
	RoomID   *string
	Statuses []domain.BookingStatus
	Limit    int
	Offset   int
}

// BookingRepository encapsulates booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// HasOverlap reports whether a pending or confirmed booking of roomID
	// intersects [checkIn, checkOut).
	HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	// FindActiveForUser returns the confirmed booking covering at, or pgx.ErrNoRows.
	FindActiveForUser(ctx context.Context, userID string, at time.Time) (*domain.Booking, error)
}

const bookingColumns = `id, user_id, room_id, check_in, check_out, guests, status, total, created_at, updated_at`

type bookingRepository struct {
	q Querier
}

// NewBookingRepository constructs repository.
func NewBookingRepository(q Querier) BookingRepository {
	return &bookingRepository{q: q}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (user_id, room_id, check_in, check_out, guests, status, total)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		booking.UserID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Guests,
		booking.Status,
		booking.Total,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	const query = `
        UPDATE bookings SET check_in=$1, check_out=$2, guests=$3, status=$4, total=$5, updated_at=NOW()
        WHERE id=$6`
	return execAffecting(ctx, r.q, query,
		booking.CheckIn,
		booking.CheckOut,
		booking.Guests,
		booking.Status,
		booking.Total,
		booking.ID,
	)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		clauses = append(clauses, fmt.Sprintf("room_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY check_in DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *booking)
	}
	return result, rows.Err()
}

func (r *bookingRepository) HasOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE room_id=$1 AND status IN ('pending','confirmed')
              AND check_in < $3 AND check_out > $2
        )`
	var exists bool
	if err := r.q.QueryRow(ctx, query, roomID, checkIn, checkOut).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *bookingRepository) FindActiveForUser(ctx context.Context, userID string, at time.Time) (*domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + `
        FROM bookings
        WHERE user_id=$1 AND status='confirmed' AND check_in <= $2 AND check_out > $2
        ORDER BY check_in DESC LIMIT 1`
	return scanBooking(r.q.QueryRow(ctx, query, userID, at))
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.RoomID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.Status,
		&b.Total,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
