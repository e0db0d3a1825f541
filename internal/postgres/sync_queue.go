package postgres

import (
	"context"
	"fmt"
	"time"

	"shutterdesk/internal/models"
)

func (s *Store) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	query := `INSERT INTO sync_queue (task_type, project_id, payload, status, retry_count, last_error, next_retry_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err := s.QueryRowContext(ctx, query,
		task.TaskType, task.ProjectID, task.Payload, task.Status, task.RetryCount, task.LastError, task.NextRetryAt).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sync task: %w", translate(err))
	}
	return nil
}

func (s *Store) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	query := `SELECT id, task_type, project_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
	          FROM sync_queue
	          WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= now())
	          ORDER BY created_at
	          LIMIT $1`
	rows, err := s.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sync tasks: %w", translate(err))
	}
	defer rows.Close()

	var tasks []models.SyncTask
	for rows.Next() {
		var task models.SyncTask
		if err := rows.Scan(
			&task.ID, &task.TaskType, &task.ProjectID, &task.Payload, &task.Status,
			&task.RetryCount, &task.LastError, &task.CreatedAt, &task.ProcessedAt, &task.NextRetryAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}

	switch status {
	case "retry":
		query = `UPDATE sync_queue SET status = $1, last_error = $2, retry_count = retry_count + 1, next_retry_at = $3 WHERE id = $4`
		args = []interface{}{status, errMsg, nextRetryAt, id}
	case "completed", "failed":
		query = `UPDATE sync_queue SET status = $1, last_error = $2, processed_at = now() WHERE id = $3`
		args = []interface{}{status, errMsg, id}
	default:
		query = `UPDATE sync_queue SET status = $1, last_error = $2 WHERE id = $3`
		args = []interface{}{status, errMsg, id}
	}

	if _, err := s.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update sync task status: %w", translate(err))
	}
	return nil
}

func (s *Store) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	query := `SELECT id, task_type, project_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
	          FROM sync_queue WHERE status = 'failed' ORDER BY created_at`
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed sync tasks: %w", translate(err))
	}
	defer rows.Close()

	var tasks []models.SyncTask
	for rows.Next() {
		var task models.SyncTask
		if err := rows.Scan(
			&task.ID, &task.TaskType, &task.ProjectID, &task.Payload, &task.Status,
			&task.RetryCount, &task.LastError, &task.CreatedAt, &task.ProcessedAt, &task.NextRetryAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
