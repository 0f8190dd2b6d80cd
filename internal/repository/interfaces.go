package repository

import (
	"context"

	"csv-import-service/internal/domain"
)

// RecordStore is the generic tenant-scoped tabular storage boundary used by
// the import pipeline. The tenant id is an explicit parameter on every call;
// nothing is read from ambient state.
type RecordStore interface {
	// Select returns at most limit rows from table, projecting columns,
	// scoped to the tenant. Rows come back most-recently-updated first with
	// id as a stable tie-break, so snapshot iteration order is deterministic.
	Select(ctx context.Context, table string, columns []string, tenantID string, limit int) ([]domain.Record, error)
	// Insert writes records and returns one Record per confirmed row.
	Insert(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error)
	// Update applies data to the row matching both id and tenant id.
	Update(ctx context.Context, table, id, tenantID string, data domain.Record) (domain.Record, error)
}

// ImportJobRepository defines methods for import job persistence.
type ImportJobRepository interface {
	CreateImportJob(ctx context.Context, job *domain.ImportJob) error
	GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error)
	GetImportJobByIdempotencyToken(ctx context.Context, token string) (*domain.ImportJob, error)
	UpdateImportJob(ctx context.Context, job *domain.ImportJob) error
}
