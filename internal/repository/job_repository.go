package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"csv-import-service/internal/domain"
)

// PostgresJobRepository implements ImportJobRepository using PostgreSQL.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgresJobRepository.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

// CreateImportJob creates a new import job. On an idempotency-token unique
// violation it loads the job that won the race and copies it into job.
func (r *PostgresJobRepository) CreateImportJob(ctx context.Context, job *domain.ImportJob) error {
	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO import_jobs (id, tenant_id, actor_id, data_type, status, total_records,
			inserted, updated, skipped, failure_count, idempotency_token, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, job.ID, job.TenantID, job.ActorID, job.DataType, job.Status, job.TotalRecords,
		job.Inserted, job.Updated, job.Skipped, job.FailureCount, job.IdempotencyToken,
		metadata, job.CreatedAt, job.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			strings.Contains(pgErr.ConstraintName, "idempotency_token") {
			existingJob, fetchErr := r.GetImportJobByIdempotencyToken(ctx, job.IdempotencyToken)
			if fetchErr != nil {
				return fmt.Errorf("fetch existing job after race: %w", fetchErr)
			}
			if existingJob != nil {
				*job = *existingJob
				return nil
			}
		}
		return fmt.Errorf("insert import job: %w", err)
	}

	return nil
}

const importJobColumns = `id, tenant_id, actor_id, data_type, status, total_records,
	inserted, updated, skipped, failure_count, idempotency_token, metadata, error_message,
	created_at, updated_at, completed_at`

func scanImportJob(row pgx.Row) (*domain.ImportJob, error) {
	var job domain.ImportJob
	var metadata []byte
	var completedAt *time.Time
	var errorMsg *string

	err := row.Scan(&job.ID, &job.TenantID, &job.ActorID, &job.DataType, &job.Status,
		&job.TotalRecords, &job.Inserted, &job.Updated, &job.Skipped, &job.FailureCount,
		&job.IdempotencyToken, &metadata, &errorMsg,
		&job.CreatedAt, &job.UpdatedAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if metadata != nil {
		if err := json.Unmarshal(metadata, &job.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	job.CompletedAt = completedAt
	job.ErrorMessage = errorMsg
	return &job, nil
}

// GetImportJob retrieves an import job by ID.
func (r *PostgresJobRepository) GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	job, err := scanImportJob(r.pool.QueryRow(ctx,
		`SELECT `+importJobColumns+` FROM import_jobs WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get import job: %w", err)
	}
	return job, nil
}

// GetImportJobByIdempotencyToken retrieves an import job by idempotency token.
func (r *PostgresJobRepository) GetImportJobByIdempotencyToken(ctx context.Context, token string) (*domain.ImportJob, error) {
	job, err := scanImportJob(r.pool.QueryRow(ctx,
		`SELECT `+importJobColumns+` FROM import_jobs WHERE idempotency_token = $1`, token))
	if err != nil {
		return nil, fmt.Errorf("get import job by token: %w", err)
	}
	return job, nil
}

// UpdateImportJob updates an existing import job.
func (r *PostgresJobRepository) UpdateImportJob(ctx context.Context, job *domain.ImportJob) error {
	metadata, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = $2, total_records = $3, inserted = $4, updated = $5,
			skipped = $6, failure_count = $7, metadata = $8, error_message = $9,
			updated_at = $10, completed_at = $11
		WHERE id = $1
	`, job.ID, job.Status, job.TotalRecords, job.Inserted, job.Updated,
		job.Skipped, job.FailureCount, metadata, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt)

	if err != nil {
		return fmt.Errorf("update import job: %w", err)
	}
	return nil
}
