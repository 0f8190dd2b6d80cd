package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/metrics"
	"csv-import-service/internal/repository"
)

// InsertBatchSize is how many records go into one insert statement.
const InsertBatchSize = 100

// systemFields are stamped by the store or the executor and must never be
// carried in an update payload.
var systemFields = []string{"id", "created_at", "company_id", "created_by"}

// Executor writes a resolution plan to the record store. Failures are
// collected, never fatal: a failed insert batch does not stop the remaining
// batches and a failed update does not stop subsequent updates.
type Executor struct {
	store repository.RecordStore
}

// NewExecutor creates a new Executor.
func NewExecutor(store repository.RecordStore) *Executor {
	return &Executor{store: store}
}

// Execute performs the batched inserts and per-record updates for one import.
// Every inserted record is stamped with the tenant and actor ids; updates are
// scoped by both record id and tenant id. Counts reflect only rows the store
// confirmed.
func (e *Executor) Execute(ctx context.Context, t *domain.CSVTemplate, plan domain.ResolutionPlan, tenantID, actorID string) domain.ImportResult {
	result := domain.ImportResult{
		Skipped:             plan.Skipped,
		SkippedNoResolution: plan.SkippedNoResolution,
	}

	for start := 0; start < len(plan.ToInsert); start += InsertBatchSize {
		end := start + InsertBatchSize
		if end > len(plan.ToInsert) {
			end = len(plan.ToInsert)
		}

		batch := make([]domain.Record, 0, end-start)
		for _, rec := range plan.ToInsert[start:end] {
			stamped := rec.Clone()
			stamped["company_id"] = tenantID
			stamped["created_by"] = actorID
			batch = append(batch, stamped)
		}

		batchStart := time.Now()
		inserted, err := e.store.Insert(ctx, t.TableName, batch)
		metrics.ObserveBatchDuration(t.DataType, "insert", time.Since(batchStart).Seconds())
		if err != nil {
			logger.Error("Insert batch failed",
				slog.String("data_type", t.DataType),
				slog.Int("offset", start),
				slog.String("error", err.Error()))
			result.Errors = append(result.Errors, domain.ImportError{
				Row:     start,
				Message: fmt.Sprintf("insert batch starting at record %d failed: %v", start, err),
			})
			continue
		}
		result.Inserted += len(inserted)
	}

	for _, u := range plan.ToUpdate {
		data := u.Data.Clone()
		for _, f := range systemFields {
			delete(data, f)
		}

		updStart := time.Now()
		_, err := e.store.Update(ctx, t.TableName, u.ID, tenantID, data)
		metrics.ObserveBatchDuration(t.DataType, "update", time.Since(updStart).Seconds())
		if err != nil {
			logger.Error("Record update failed",
				slog.String("data_type", t.DataType),
				slog.String("id", u.ID),
				slog.String("error", err.Error()))
			result.Errors = append(result.Errors, domain.ImportError{
				Field:   "id",
				Value:   u.ID,
				Message: fmt.Sprintf("update of record %s failed: %v", u.ID, err),
			})
			continue
		}
		result.Updated++
	}

	result.Success = len(result.Errors) == 0
	return result
}
