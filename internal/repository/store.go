package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every repository bound to the same Querier.
type Repositories struct {
	Users          UserRepository
	Staff          StaffRepository
	Rooms          RoomRepository
	RoomImages     RoomImageRepository
	Bookings       BookingRepository
	Menu           MenuRepository
	Orders         OrderRepository
	Tasks          TaskRepository
	TaskHistory    TaskHistoryRepository
	Rotation       RotationRepository
	Notifications  NotificationRepository
	Chat           ChatRepository
	PasswordResets PasswordResetRepository
}

// NewRepositories binds all repositories to q.
func NewRepositories(q Querier) Repositories {
	return Repositories{
		Users:          NewUserRepository(q),
		Staff:          NewStaffRepository(q),
		Rooms:          NewRoomRepository(q),
		RoomImages:     NewRoomImageRepository(q),
		Bookings:       NewBookingRepository(q),
		Menu:           NewMenuRepository(q),
		Orders:         NewOrderRepository(q),
		Tasks:          NewTaskRepository(q),
		TaskHistory:    NewTaskHistoryRepository(q),
		Rotation:       NewRotationRepository(q),
		Notifications:  NewNotificationRepository(q),
		Chat:           NewChatRepository(q),
		PasswordResets: NewPasswordResetRepository(q),
	}
}

// TxRunner runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner returns a TxRunner backed by pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

func (r *pgTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
