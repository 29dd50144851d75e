package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prodscout/internal/common"
	"prodscout/internal/model"
)

// SaveProject inserts or updates a project. A missing ID is assigned.
func (s *SQLiteStorage) SaveProject(ctx context.Context, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProject(project); err != nil {
		return err
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (
			id, name, description, target_product_name, target_product_category,
			target_budget_range, currency, status, pipeline_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			target_product_name = excluded.target_product_name,
			target_product_category = excluded.target_product_category,
			target_budget_range = excluded.target_budget_range,
			currency = excluded.currency,
			status = excluded.status,
			pipeline_type = excluded.pipeline_type
	`,
		project.ID, project.Name, project.Description,
		project.TargetProductName, project.TargetProductCategory,
		project.TargetBudgetRange, project.Currency,
		project.Status, project.PipelineType, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject returns a project by ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, target_product_name, target_product_category,
			target_budget_range, currency, status, pipeline_type, created_at
		FROM projects WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects, newest first.
func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, target_product_name, target_product_category,
			target_budget_range, currency, status, pipeline_type, created_at
		FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan project: %w", scanErr)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var description, category, currency, status, pipeline sql.NullString
	var budget sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Name, &description, &p.TargetProductName, &category,
		&budget, &currency, &status, &pipeline, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.TargetProductCategory = category.String
	p.Currency = currency.String
	p.Status = status.String
	p.PipelineType = pipeline.String
	p.TargetBudgetRange = budget.Float64
	return &p, nil
}
