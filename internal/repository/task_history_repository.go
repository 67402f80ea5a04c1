package repository

import (
	"context"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// TaskHistoryRepository stores task audit entries.
type TaskHistoryRepository interface {
	Create(ctx context.Context, history *domain.TaskHistory) error
	ListByTask(ctx context.Context, taskID string) ([]domain.TaskHistory, error)
}

type taskHistoryRepository struct {
	q Querier
}

// NewTaskHistoryRepository builds repository.
func NewTaskHistoryRepository(q Querier) TaskHistoryRepository {
	return &taskHistoryRepository{q: q}
}

func (r *taskHistoryRepository) Create(ctx context.Context, history *domain.TaskHistory) error {
	const query = `
        INSERT INTO task_history (task_id, changed_by_type, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.q.QueryRow(ctx, query,
		history.TaskID,
		history.ChangedByType,
		history.ChangedByID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *taskHistoryRepository) ListByTask(ctx context.Context, taskID string) ([]domain.TaskHistory, error) {
	const query = `
        SELECT id, task_id, changed_by_type, changed_by_id, change_type, old_value, new_value, created_at
        FROM task_history WHERE task_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskHistory
	for rows.Next() {
		var history domain.TaskHistory
		if err := rows.Scan(
			&history.ID,
			&history.TaskID,
			&history.ChangedByType,
			&history.ChangedByID,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
