package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// NotificationRepository is the mail outbox.
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *domain.Notification) error
	// ClaimDue leases up to limit pending rows whose next attempt is due by
	// moving their next attempt to leaseUntil. Rows locked by another worker
	// are skipped. A row that is never marked becomes due again after the lease.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id, lastError string, nextAttemptAt time.Time) error
	MarkFailed(ctx context.Context, id, lastError string) error
	List(ctx context.Context, status *domain.NotificationStatus, limit, offset int) ([]domain.Notification, error)
}

const notificationColumns = `id, recipient, subject, body, status, attempts, last_error, next_attempt_at, sent_at, created_at`

type notificationRepository struct {
	q Querier
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(q Querier) NotificationRepository {
	return &notificationRepository{q: q}
}

func (r *notificationRepository) Enqueue(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (recipient, subject, body, status, attempts, next_attempt_at)
        VALUES ($1,$2,$3,$4,0,NOW())
        RETURNING id, created_at`
	n.Status = domain.NotificationStatusPending
	return r.q.QueryRow(ctx, query, n.Recipient, n.Subject, n.Body, n.Status).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]domain.Notification, error) {
	limit, _ = normalizePage(limit, 0)
	query := `
        WITH due AS (
            SELECT id FROM notifications
            WHERE status=$1 AND next_attempt_at <= $2
            ORDER BY next_attempt_at ASC
            LIMIT ` + fmt.Sprint(limit) + `
            FOR UPDATE SKIP LOCKED
        )
        UPDATE notifications n SET next_attempt_at=$3
        FROM due WHERE n.id = due.id
        RETURNING n.id, n.recipient, n.subject, n.body, n.status, n.attempts, n.last_error,
                  n.next_attempt_at, n.sent_at, n.created_at`
	claimed, err := r.query(ctx, query, domain.NotificationStatusPending, now, leaseUntil)
	if err != nil {
		return nil, err
	}
	sort.Slice(claimed, func(i, j int) bool { return claimed[i].CreatedAt.Before(claimed[j].CreatedAt) })
	return claimed, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `
        UPDATE notifications
        SET status=$2, sent_at=NOW(), last_error=NULL, next_attempt_at=NULL, attempts=attempts+1
        WHERE id=$1`
	return r.exec(ctx, query, id, domain.NotificationStatusSent)
}

func (r *notificationRepository) MarkRetry(ctx context.Context, id, lastError string, nextAttemptAt time.Time) error {
	const query = `
        UPDATE notifications
        SET status=$2, last_error=$3, attempts=attempts+1, next_attempt_at=$4
        WHERE id=$1`
	return r.exec(ctx, query, id, domain.NotificationStatusPending, lastError, nextAttemptAt)
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id, lastError string) error {
	const query = `
        UPDATE notifications
        SET status=$2, last_error=$3, attempts=attempts+1, next_attempt_at=NULL
        WHERE id=$1`
	return r.exec(ctx, query, id, domain.NotificationStatusFailed, lastError)
}

func (r *notificationRepository) List(ctx context.Context, status *domain.NotificationStatus, limit, offset int) ([]domain.Notification, error) {
	limit, offset = normalizePage(limit, offset)
	query := `SELECT ` + notificationColumns + ` FROM notifications`
	args := []any{}
	if status != nil {
		args = append(args, *status)
		query += ` WHERE status=$1`
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)
	return r.query(ctx, query, args...)
}

func (r *notificationRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Recipient,
			&n.Subject,
			&n.Body,
			&n.Status,
			&n.Attempts,
			&n.LastError,
			&n.NextAttemptAt,
			&n.SentAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
