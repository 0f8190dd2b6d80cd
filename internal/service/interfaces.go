package service

import (
	"context"

	"csv-import-service/internal/domain"
)

// ImportServiceInterface defines the interface for import operations.
// Used for dependency injection and mocking in tests.
type ImportServiceInterface interface {
	// Preview runs the pipeline up to (but not including) execution and
	// returns what would happen, synchronously.
	Preview(ctx context.Context, req ImportRequest) (*domain.PreviewResult, error)
	// StartImport creates an import job and queues it for asynchronous
	// processing.
	StartImport(ctx context.Context, req ImportRequest) (*domain.ImportJob, error)
	// GetImportJob retrieves an import job by ID.
	GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error)
	// Close shuts down the import service workers.
	Close()
}
