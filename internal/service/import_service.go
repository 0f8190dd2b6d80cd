package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/importer"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/metrics"
	"csv-import-service/internal/repository"
	"csv-import-service/internal/templates"
)

const (
	// DefaultImportTimeout is the timeout for import processing
	DefaultImportTimeout = 30 * time.Minute

	// QueueSendTimeout is the timeout for sending tasks to the queue
	QueueSendTimeout = 5 * time.Second

	// MaxStoredErrors caps how many row errors are kept in job metadata.
	// Full error lists for very large files would bloat the jobs table.
	MaxStoredErrors = 100
)

// ImportService runs the CSV import pipeline: parse, lookup resolution,
// validation, duplicate detection, resolution, and execution. Preview is
// synchronous; StartImport queues a job onto the worker pool.
type ImportService struct {
	store   repository.RecordStore
	jobRepo repository.ImportJobRepository

	lookups  *importer.LookupResolver
	checker  *importer.DuplicateChecker
	executor *importer.Executor

	workerCount int
	timeout     time.Duration

	jobQueue chan importTask
	stopChan chan struct{}
	wg       sync.WaitGroup
	closed   bool
	mu       sync.RWMutex
}

// ImportRequest carries everything one import needs. TenantID and ActorID are
// always explicit; nothing is read from ambient state.
type ImportRequest struct {
	DataType         string
	TenantID         string
	ActorID          string
	IdempotencyToken string
	Filename         string
	RequestID        string
	Data             []byte

	// FieldMappings maps CSV header names to template db fields, for files
	// whose headers don't match the template.
	FieldMappings map[string]string

	// Resolutions are the user's decisions for duplicates found in a
	// preceding preview. Duplicates without a resolution are skipped.
	Resolutions []domain.ResolvedDuplicate
}

type importTask struct {
	job *domain.ImportJob
	req ImportRequest
}

// NewImportService creates a new ImportService with worker pool.
func NewImportService(
	store repository.RecordStore,
	jobRepo repository.ImportJobRepository,
	workerCount int,
	timeout time.Duration,
) *ImportService {
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	s := &ImportService{
		store:       store,
		jobRepo:     jobRepo,
		lookups:     importer.NewLookupResolver(store),
		checker:     importer.NewDuplicateChecker(store),
		executor:    importer.NewExecutor(store),
		workerCount: workerCount,
		timeout:     timeout,
		jobQueue:    make(chan importTask, workerCount*2),
		stopChan:    make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

func (s *ImportService) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.jobQueue:
			if !ok {
				return
			}
			s.processImport(task)
		case <-s.stopChan:
			return
		}
	}
}

// Close shuts down the worker pool immediately.
func (s *ImportService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	close(s.stopChan)
	close(s.jobQueue)
	s.wg.Wait()
}

// Preview parses, resolves lookups, validates, and checks duplicates without
// writing anything. The result tells the caller which rows failed and which
// duplicates need a decision before StartImport.
func (s *ImportService) Preview(ctx context.Context, req ImportRequest) (*domain.PreviewResult, error) {
	t, err := templates.Lookup(req.DataType)
	if err != nil {
		return nil, err
	}

	_, rows, parseErrs, err := importer.ParseCSV(bytes.NewReader(req.Data))
	if err != nil {
		return nil, err
	}

	unresolved, err := s.lookups.Resolve(ctx, t, rows, req.FieldMappings, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve lookups: %w", err)
	}

	vr := importer.Validate(t, rows, req.FieldMappings)

	dup, err := s.checker.Check(ctx, t, vr.ValidatedData, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}

	return &domain.PreviewResult{
		DataType:          req.DataType,
		TotalRows:         len(rows) + len(parseErrs),
		ValidRows:         len(vr.ValidatedData),
		Errors:            append(parseErrs, vr.Errors...),
		UnresolvedLookups: unresolved,
		Duplicates:        dup.Duplicates,
		NewRecordCount:    len(dup.NewRecords),
	}, nil
}

// StartImport creates an import job and queues it for processing. A request
// carrying an idempotency token already seen returns the original job.
func (s *ImportService) StartImport(ctx context.Context, req ImportRequest) (*domain.ImportJob, error) {
	if _, err := templates.Lookup(req.DataType); err != nil {
		return nil, err
	}

	log := logger.Default().With(
		slog.String("request_id", req.RequestID),
		slog.String("data_type", req.DataType))

	if req.IdempotencyToken != "" {
		existingJob, err := s.jobRepo.GetImportJobByIdempotencyToken(ctx, req.IdempotencyToken)
		if err != nil {
			return nil, fmt.Errorf("check idempotency token: %w", err)
		}
		if existingJob != nil {
			log.Info("Returning existing job for idempotency token",
				slog.String("job_id", existingJob.ID))
			return existingJob, nil
		}
	}

	now := time.Now()
	job := &domain.ImportJob{
		ID:               uuid.New().String(),
		TenantID:         req.TenantID,
		ActorID:          req.ActorID,
		DataType:         req.DataType,
		Status:           domain.JobStatusPending,
		IdempotencyToken: req.IdempotencyToken,
		Metadata: map[string]any{
			"filename": req.Filename,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.jobRepo.CreateImportJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("import service is shutting down")
	}
	s.mu.RUnlock()

	task := importTask{job: job, req: req}
	select {
	case s.jobQueue <- task:
		log.Info("Job queued for processing", slog.String("job_id", job.ID))
	case <-time.After(QueueSendTimeout):
		log.Warn("Queue full, job will be processed when capacity available",
			slog.String("job_id", job.ID))
		go func() {
			s.mu.RLock()
			if s.closed {
				s.mu.RUnlock()
				return
			}
			s.mu.RUnlock()

			select {
			case s.jobQueue <- task:
			case <-s.stopChan:
			}
		}()
	}

	return job, nil
}

func (s *ImportService) processImport(task importTask) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	job := task.job
	startTime := time.Now()

	log := logger.Default().With(
		slog.String("request_id", task.req.RequestID),
		slog.String("job_id", job.ID),
		slog.String("data_type", job.DataType))
	log.Info("Processing import job")

	metrics.StartJob(job.DataType)
	defer metrics.EndJob(job.DataType)

	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = time.Now()
	if err := s.jobRepo.UpdateImportJob(ctx, job); err != nil {
		log.Error("Failed to update import job status to processing",
			slog.String("error", err.Error()))
	}

	result, totalRows, err := s.runPipeline(ctx, task)
	now := time.Now()
	if err != nil {
		job.Status = domain.JobStatusFailed
		errMsg := err.Error()
		job.ErrorMessage = &errMsg
		job.UpdatedAt = now
		job.CompletedAt = &now
		if uerr := s.jobRepo.UpdateImportJob(ctx, job); uerr != nil {
			log.Error("Failed to update import job", slog.String("error", uerr.Error()))
		}
		metrics.ObserveJobCompletion(job.DataType, string(job.Status),
			time.Since(startTime).Seconds(), 0, 0, 0, 0)
		log.Error("Import job failed", slog.String("error", errMsg))
		return
	}

	job.TotalRecords = totalRows
	job.Inserted = result.Inserted
	job.Updated = result.Updated
	job.Skipped = result.Skipped
	job.FailureCount = len(result.Errors)
	job.UpdatedAt = now
	job.CompletedAt = &now

	succeeded := result.Inserted + result.Updated
	switch {
	case succeeded == 0 && job.FailureCount > 0:
		job.Status = domain.JobStatusFailed
	case job.FailureCount > 0:
		job.Status = domain.JobStatusCompletedWithErrors
	default:
		job.Status = domain.JobStatusCompleted
	}

	if job.Metadata == nil {
		job.Metadata = map[string]any{}
	}
	if len(result.Errors) > 0 {
		stored := result.Errors
		if len(stored) > MaxStoredErrors {
			stored = stored[:MaxStoredErrors]
			job.Metadata["errors_truncated"] = true
		}
		job.Metadata["errors"] = stored
	}
	if len(result.SkippedNoResolution) > 0 {
		job.Metadata["skipped_no_resolution"] = result.SkippedNoResolution
	}
	if len(result.UnresolvedLookups) > 0 {
		job.Metadata["unresolved_lookups"] = result.UnresolvedLookups
	}

	if err := s.jobRepo.UpdateImportJob(ctx, job); err != nil {
		log.Error("Failed to update import job", slog.String("error", err.Error()))
	}

	elapsed := time.Since(startTime)
	metrics.ObserveJobCompletion(job.DataType, string(job.Status), elapsed.Seconds(),
		result.Inserted, result.Updated, result.Skipped, job.FailureCount)

	log.Info("Import job completed",
		slog.String("status", string(job.Status)),
		slog.Int("total", job.TotalRecords),
		slog.Int("inserted", job.Inserted),
		slog.Int("updated", job.Updated),
		slog.Int("skipped", job.Skipped),
		slog.Int("failed", job.FailureCount),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)))
}

// runPipeline runs the full import pipeline for one job and returns the
// execution result plus the number of data rows in the file. An error return
// means the job as a whole could not run; per-row problems land in the
// result's Errors instead.
func (s *ImportService) runPipeline(ctx context.Context, task importTask) (domain.ImportResult, int, error) {
	req := task.req

	t, err := templates.Lookup(req.DataType)
	if err != nil {
		return domain.ImportResult{}, 0, err
	}

	_, rows, parseErrs, err := importer.ParseCSV(bytes.NewReader(req.Data))
	if err != nil {
		return domain.ImportResult{}, 0, err
	}
	totalRows := len(rows) + len(parseErrs)

	unresolved, err := s.lookups.Resolve(ctx, t, rows, req.FieldMappings, req.TenantID)
	if err != nil {
		return domain.ImportResult{}, 0, fmt.Errorf("resolve lookups: %w", err)
	}

	vr := importer.Validate(t, rows, req.FieldMappings)

	dup, err := s.checker.Check(ctx, t, vr.ValidatedData, req.TenantID)
	if err != nil {
		return domain.ImportResult{}, 0, fmt.Errorf("check duplicates: %w", err)
	}

	plan := importer.ApplyResolutions(dup, req.Resolutions, t)

	result := s.executor.Execute(ctx, t, plan, req.TenantID, req.ActorID)
	result.Errors = append(append(parseErrs, vr.Errors...), result.Errors...)
	result.UnresolvedLookups = unresolved
	result.Success = len(result.Errors) == 0

	return result, totalRows, nil
}

// GetImportJob retrieves an import job by ID.
func (s *ImportService) GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	return s.jobRepo.GetImportJob(ctx, id)
}
