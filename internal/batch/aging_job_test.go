package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"collection-engine/internal/batch"
	"collection-engine/internal/infrastructure/monitoring"
	"collection-engine/internal/pkg/apperrors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAger struct {
	mock.Mock
}

func (m *MockAger) IncrementAgeMonths(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAgingJobPanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { batch.NewAgingJob(nil, time.Minute, newTestLogger()) })
	assert.Panics(t, func() { batch.NewAgingJob(new(MockAger), time.Minute, nil) })
}

func TestAgingJobRun(t *testing.T) {
	t.Run("ages customers and records metric", func(t *testing.T) {
		repo := new(MockAger)
		repo.On("IncrementAgeMonths", mock.MatchedBy(func(ctx context.Context) bool {
			_, hasDeadline := ctx.Deadline()
			return hasDeadline
		})).Return(int64(5), nil).Once()

		before := testutil.ToFloat64(monitoring.Import.AgedCustomers)
		job := batch.NewAgingJob(repo, time.Minute, newTestLogger())

		err := job.Run(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, before+5, testutil.ToFloat64(monitoring.Import.AgedCustomers))
		repo.AssertExpectations(t)
	})

	t.Run("returns repository error", func(t *testing.T) {
		repo := new(MockAger)
		repo.On("IncrementAgeMonths", mock.Anything).Return(int64(0), apperrors.ErrDatabase).Once()

		job := batch.NewAgingJob(repo, 0, newTestLogger())

		err := job.Run(context.Background())
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrDatabase))
		repo.AssertExpectations(t)
	})
}
