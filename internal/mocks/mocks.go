// Package mocks provides testify mocks for the repository and service
// boundaries, used by unit tests across packages.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/service"
)

// RecordStore is a mock implementation of repository.RecordStore.
type RecordStore struct {
	mock.Mock
}

func (m *RecordStore) Select(ctx context.Context, table string, columns []string, tenantID string, limit int) ([]domain.Record, error) {
	args := m.Called(ctx, table, columns, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *RecordStore) Insert(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error) {
	args := m.Called(ctx, table, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *RecordStore) Update(ctx context.Context, table, id, tenantID string, data domain.Record) (domain.Record, error) {
	args := m.Called(ctx, table, id, tenantID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Record), args.Error(1)
}

// ImportJobRepository is a mock implementation of repository.ImportJobRepository.
type ImportJobRepository struct {
	mock.Mock
}

func (m *ImportJobRepository) CreateImportJob(ctx context.Context, job *domain.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *ImportJobRepository) GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportJob), args.Error(1)
}

func (m *ImportJobRepository) GetImportJobByIdempotencyToken(ctx context.Context, token string) (*domain.ImportJob, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportJob), args.Error(1)
}

func (m *ImportJobRepository) UpdateImportJob(ctx context.Context, job *domain.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// ImportService is a mock implementation of service.ImportServiceInterface.
type ImportService struct {
	mock.Mock
}

func (m *ImportService) Preview(ctx context.Context, req service.ImportRequest) (*domain.PreviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreviewResult), args.Error(1)
}

func (m *ImportService) StartImport(ctx context.Context, req service.ImportRequest) (*domain.ImportJob, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportJob), args.Error(1)
}

func (m *ImportService) GetImportJob(ctx context.Context, id string) (*domain.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportJob), args.Error(1)
}

func (m *ImportService) Close() {
	m.Called()
}
