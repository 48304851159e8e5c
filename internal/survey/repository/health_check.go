package repository

import (
	"context"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
)

// healthCheckQuery reads from the responses table so a missing schema counts as unhealthy.
const healthCheckQuery = `SELECT 1 FROM survey_responses LIMIT 1`

func checkHealth(ctx context.Context, querier database.Querier) error {
	rows, err := querier.QueryContext(ctx, healthCheckQuery)
	if err != nil {
		return apperrors.Wrap(err, "database health check failed")
	}
	defer func() {
		_ = rows.Close()
	}()

	rows.Next()
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "database health check failed")
	}
	return nil
}
