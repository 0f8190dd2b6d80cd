package importer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/importer"
	"csv-import-service/internal/mocks"
	"csv-import-service/internal/templates"
)

const testActor = "0f0e0d0c-0b0a-0908-0706-050403020100"

func insertedIDs(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{"id": fmt.Sprintf("id-%d", i)}
	}
	return out
}

func makeInserts(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{"name": fmt.Sprintf("Material %d", i)}
	}
	return out
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	tmpl, err := templates.Lookup("materials")
	require.NoError(t, err)

	t.Run("inserts in batches of 100", func(t *testing.T) {
		store := new(mocks.RecordStore)
		batchLen := func(n int) any {
			return mock.MatchedBy(func(recs []domain.Record) bool { return len(recs) == n })
		}
		store.On("Insert", mock.Anything, "materials", batchLen(100)).
			Return(insertedIDs(100), nil).Twice()
		store.On("Insert", mock.Anything, "materials", batchLen(50)).
			Return(insertedIDs(50), nil).Once()

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			ToInsert: makeInserts(250),
		}, testTenant, testActor)

		assert.True(t, result.Success)
		assert.Equal(t, 250, result.Inserted)
		store.AssertExpectations(t)
	})

	t.Run("stamps tenant and actor on every insert", func(t *testing.T) {
		store := new(mocks.RecordStore)
		store.On("Insert", mock.Anything, "materials", mock.MatchedBy(func(recs []domain.Record) bool {
			for _, r := range recs {
				if r["company_id"] != testTenant || r["created_by"] != testActor {
					return false
				}
			}
			return true
		})).Return(insertedIDs(2), nil)

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			ToInsert: makeInserts(2),
		}, testTenant, testActor)

		assert.True(t, result.Success)
		store.AssertExpectations(t)
	})

	t.Run("stamping does not mutate the plan's records", func(t *testing.T) {
		store := new(mocks.RecordStore)
		store.On("Insert", mock.Anything, "materials", mock.Anything).Return(insertedIDs(1), nil)

		plan := domain.ResolutionPlan{ToInsert: makeInserts(1)}
		exec := importer.NewExecutor(store)
		exec.Execute(ctx, tmpl, plan, testTenant, testActor)

		assert.NotContains(t, plan.ToInsert[0], "company_id")
	})

	t.Run("a failed batch does not stop the rest", func(t *testing.T) {
		store := new(mocks.RecordStore)
		store.On("Insert", mock.Anything, "materials", mock.Anything).
			Return(nil, errors.New("deadlock detected")).Once()
		store.On("Insert", mock.Anything, "materials", mock.Anything).
			Return(insertedIDs(50), nil).Once()

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			ToInsert: makeInserts(150),
		}, testTenant, testActor)

		assert.False(t, result.Success)
		assert.Equal(t, 50, result.Inserted)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 0, result.Errors[0].Row) // offset of the failed batch
		assert.Contains(t, result.Errors[0].Message, "deadlock")
		store.AssertExpectations(t)
	})

	t.Run("updates are tenant scoped and strip system fields", func(t *testing.T) {
		store := new(mocks.RecordStore)
		store.On("Update", mock.Anything, "materials", "ex-1", testTenant, mock.MatchedBy(func(data domain.Record) bool {
			for _, k := range []string{"id", "created_at", "company_id", "created_by"} {
				if _, ok := data[k]; ok {
					return false
				}
			}
			return data["name"] == "2x4 Stud 8ft"
		})).Return(domain.Record{"id": "ex-1"}, nil)

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			ToUpdate: []domain.RecordUpdate{{
				ID: "ex-1",
				Data: domain.Record{
					"id":         "ex-1",
					"company_id": "someone-else",
					"created_at": "2023-01-01T00:00:00Z",
					"name":       "2x4 Stud 8ft",
				},
			}},
		}, testTenant, testActor)

		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Updated)
		store.AssertExpectations(t)
	})

	t.Run("a failed update does not stop subsequent updates", func(t *testing.T) {
		store := new(mocks.RecordStore)
		store.On("Update", mock.Anything, "materials", "gone", testTenant, mock.Anything).
			Return(nil, errors.New("record not found")).Once()
		store.On("Update", mock.Anything, "materials", "ex-2", testTenant, mock.Anything).
			Return(domain.Record{"id": "ex-2"}, nil).Once()

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			ToUpdate: []domain.RecordUpdate{
				{ID: "gone", Data: domain.Record{"name": "A"}},
				{ID: "ex-2", Data: domain.Record{"name": "B"}},
			},
		}, testTenant, testActor)

		assert.False(t, result.Success)
		assert.Equal(t, 1, result.Updated)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "gone", result.Errors[0].Value)
	})

	t.Run("carries skip counts through to the result", func(t *testing.T) {
		store := new(mocks.RecordStore)

		exec := importer.NewExecutor(store)
		result := exec.Execute(ctx, tmpl, domain.ResolutionPlan{
			Skipped:             3,
			SkippedNoResolution: []int{4, 7},
		}, testTenant, testActor)

		assert.True(t, result.Success)
		assert.Equal(t, 3, result.Skipped)
		assert.Equal(t, []int{4, 7}, result.SkippedNoResolution)
		store.AssertNotCalled(t, "Insert")
		store.AssertNotCalled(t, "Update")
	})
}
