package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"collection-engine/internal/pkg/apperrors"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the customers and settlements tables when they are missing.
func Migrate(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Applying database schema...")
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		logger.ErrorContext(ctx, "Failed to apply database schema", slog.Any("error", err))
		return fmt.Errorf("%w: failed to apply schema: %w", apperrors.ErrDatabase, err)
	}
	return nil
}
