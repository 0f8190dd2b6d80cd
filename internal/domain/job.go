package domain

import "time"

// JobStatus represents the status of an import job.
type JobStatus string

const (
	JobStatusPending             JobStatus = "pending"
	JobStatusProcessing          JobStatus = "processing"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusCompletedWithErrors JobStatus = "completed_with_errors"
	JobStatusFailed              JobStatus = "failed"
)

// ImportJob tracks one asynchronous import operation for a tenant.
type ImportJob struct {
	ID               string         `json:"id"`
	TenantID         string         `json:"tenant_id"`
	ActorID          string         `json:"actor_id"`
	DataType         string         `json:"data_type"`
	Status           JobStatus      `json:"status"`
	TotalRecords     int            `json:"total_records"`
	Inserted         int            `json:"inserted"`
	Updated          int            `json:"updated"`
	Skipped          int            `json:"skipped"`
	FailureCount     int            `json:"failure_count"`
	IdempotencyToken string         `json:"idempotency_token"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}
