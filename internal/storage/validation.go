package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prodscout/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidProject = errors.New("invalid project")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidTask    = errors.New("invalid task")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateProject validates a project before persistence.
func validateProject(project *model.Project) error {
	if project == nil {
		return fmt.Errorf("%w: project", ErrNilParameter)
	}
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProject)
	}
	return nil
}

// validateProduct validates a single product before persistence.
func validateProduct(product *model.Product) error {
	if product == nil {
		return fmt.Errorf("%w: product", ErrNilParameter)
	}
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	}
	if strings.TrimSpace(product.URL) == "" {
		return fmt.Errorf("%w: missing URL", ErrInvalidProduct)
	}
	if product.Platform == "" || product.Platform == model.PlatformUnknown {
		return fmt.Errorf("%w: missing platform", ErrInvalidProduct)
	}
	return nil
}

// validateTask validates a marketing task before persistence.
func validateTask(task *model.MarketingTask) error {
	if task == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	if !task.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTask, task.Name)
	}
	return nil
}
