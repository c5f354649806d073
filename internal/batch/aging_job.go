package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"collection-engine/internal/infrastructure/monitoring"
)

// Ager is the part of the customer repository the aging job needs.
type Ager interface {
	IncrementAgeMonths(ctx context.Context) (int64, error)
}

// AgingJob adds a month of age to every customer that still carries arrears.
type AgingJob struct {
	repo    Ager
	timeout time.Duration
	logger  *slog.Logger
}

func NewAgingJob(repo Ager, timeout time.Duration, logger *slog.Logger) *AgingJob {
	if repo == nil || logger == nil {
		panic("AgingJob dependencies cannot be nil")
	}
	return &AgingJob{
		repo:    repo,
		timeout: timeout,
		logger:  logger.With("job", "AgeArrears"),
	}
}

func (j *AgingJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting monthly arrears aging job.")

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	aged, err := j.repo.IncrementAgeMonths(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Arrears aging job failed.",
			slog.Duration("duration", time.Since(startTime)), slog.Any("error", err))
		return fmt.Errorf("arrears aging failed: %w", err)
	}

	monitoring.RecordAgedCustomers(aged)
	j.logger.InfoContext(ctx, "Arrears aging job finished successfully.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("customers_aged", aged),
	)
	return nil
}
