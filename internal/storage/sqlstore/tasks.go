package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage"
)

// CreateScheduledTask persists a new settlement task.
func (q *queries) CreateScheduledTask(ctx context.Context, task *models.ScheduledTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}

	_, err := q.exec(ctx,
		`INSERT INTO scheduled_tasks (id, transaction_id, status, scheduled_at, executed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.TransactionID, string(task.Status),
		toMillis(task.ScheduledAt), nullableMillis(task.ExecutedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scheduled task: %w", err)
	}
	return nil
}

// GetScheduledTaskByTransaction retrieves the task for a transaction.
func (q *queries) GetScheduledTaskByTransaction(ctx context.Context, transactionID string) (*models.ScheduledTask, error) {
	task, err := scanTask(q.queryRow(ctx,
		`SELECT id, transaction_id, status, scheduled_at, executed_at
		 FROM scheduled_tasks WHERE transaction_id = ?`,
		transactionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task for transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled task: %w", err)
	}
	return task, nil
}

// ListDueTasks returns pending tasks whose time has come, earliest first.
func (q *queries) ListDueTasks(ctx context.Context, now time.Time, limit int) ([]models.ScheduledTask, error) {
	rows, err := q.query(ctx,
		`SELECT id, transaction_id, status, scheduled_at, executed_at
		 FROM scheduled_tasks
		 WHERE status = ? AND scheduled_at <= ?
		 ORDER BY scheduled_at ASC, id ASC
		 LIMIT ?`,
		string(models.TaskPending), toMillis(now), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.ScheduledTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due tasks: %w", err)
	}

	return tasks, nil
}

// MarkTaskExecuted flips a pending task to executed.
func (q *queries) MarkTaskExecuted(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := q.exec(ctx,
		"UPDATE scheduled_tasks SET status = ?, executed_at = ? WHERE id = ? AND status = ?",
		string(models.TaskExecuted), toMillis(at), id, string(models.TaskPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark task executed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.ScheduledTask, error) {
	task := &models.ScheduledTask{}
	var status string
	var scheduled int64
	var executed sql.NullInt64

	if err := s.Scan(&task.ID, &task.TransactionID, &status, &scheduled, &executed); err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	task.ScheduledAt = fromMillis(scheduled)
	task.ExecutedAt = timePtr(executed)
	return task, nil
}
