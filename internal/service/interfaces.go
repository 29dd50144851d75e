// Package service defines the interfaces shared across application services.
package service

import (
	"context"
	"time"

	"prodscout/internal/model"
)

// RetryOptions configures retry behavior for fallible operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ImportResult summarizes a product import: what was persisted and what was
// skipped. Partial success is success; skips show up only in the counts.
type ImportResult struct {
	ImportedIDs       []string
	SkippedDuplicates int
	SkippedErrors     int
}

// Imported returns the number of successfully persisted products.
func (r ImportResult) Imported() int {
	return len(r.ImportedIDs)
}

// Skipped returns the total number of products excluded from the import.
func (r ImportResult) Skipped() int {
	return r.SkippedDuplicates + r.SkippedErrors
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Project operations
	SaveProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)

	// Product operations
	ImportProducts(ctx context.Context, projectID string, products []model.Product) (ImportResult, error)
	ListProducts(ctx context.Context, projectID string) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// Task operations
	SaveTasks(ctx context.Context, productID string, tasks []model.MarketingTask) error
	ListTasks(ctx context.Context, productID string) ([]model.MarketingTask, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
