package database

import (
	"context"
	"fmt"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

func (s *Store) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	query := `INSERT INTO sync_queue (task_type, client_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id`
	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		task.TaskType,
		task.ClientID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		now,
		task.NextRetryAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create sync task: %w", err)
	}
	task.CreatedAt = now
	return nil
}

func (s *Store) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	query := `SELECT id, task_type, client_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM sync_queue
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= $1)
              ORDER BY created_at ASC LIMIT $2`

	var tasks []models.SyncTask
	if err := s.db.SelectContext(ctx, &tasks, query, time.Now(), limit); err != nil {
		return nil, fmt.Errorf("get pending sync tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	now := time.Now()

	switch status {
	case "retry":
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3, retry_count = retry_count + 1 WHERE id = $4`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	case "completed", "failed":
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3, processed_at = $4 WHERE id = $5`
		args = []interface{}{status, errMsg, nextRetryAt, now, id}
	default:
		query = `UPDATE sync_queue SET status = $1, last_error = $2, next_retry_at = $3 WHERE id = $4`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update sync task status: %w", err)
	}
	return nil
}

// CountQueuedSyncTasks возвращает глубину очереди для метрик.
func (s *Store) CountQueuedSyncTasks(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sync_queue WHERE status IN ('pending', 'retry')`)
	if err != nil {
		return 0, fmt.Errorf("count queued sync tasks: %w", err)
	}
	return count, nil
}
