package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prodscout/internal/model"
)

// SaveTasks persists generated marketing tasks for a product. The batch is
// all-or-nothing; a task that fails validation aborts the save.
func (s *SQLiteStorage) SaveTasks(ctx context.Context, productID string, tasks []model.MarketingTask) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(productID, "productID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO marketing_tasks (
			id, product_id, name, description, task_type,
			priority, marketing_focus, estimated_hours, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range tasks {
		t := tasks[i]
		if validateErr := validateTask(&t); validateErr != nil {
			return fmt.Errorf("task at index %d: %w", i, validateErr)
		}

		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}

		if _, execErr := stmt.ExecContext(ctx,
			t.ID, productID, t.Name, t.Description, t.TaskType,
			t.Priority, t.MarketingFocus, t.EstimatedHours, t.CreatedAt,
		); execErr != nil {
			return fmt.Errorf("failed to insert task %q: %w", t.Name, execErr)
		}
	}

	return tx.Commit()
}

// ListTasks returns all marketing tasks saved for a product.
func (s *SQLiteStorage) ListTasks(ctx context.Context, productID string) ([]model.MarketingTask, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(productID, "productID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, description, task_type,
			priority, marketing_focus, estimated_hours, created_at
		FROM marketing_tasks WHERE product_id = ? ORDER BY created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.MarketingTask
	for rows.Next() {
		var t model.MarketingTask
		if scanErr := rows.Scan(
			&t.ID, &t.ProductID, &t.Name, &t.Description, &t.TaskType,
			&t.Priority, &t.MarketingFocus, &t.EstimatedHours, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan task: %w", scanErr)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}
