// Package repository implements persistence for survey keys and survey responses.
// Every repository has a PostgreSQL, MySQL and SQLite variant and joins the
// transaction carried by the context, if any.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// PostgreSQLSurveyKeyRepository implements SurveyKey persistence for PostgreSQL databases.
type PostgreSQLSurveyKeyRepository struct {
	db *sql.DB
}

// Create inserts a new survey key.
func (p *PostgreSQLSurveyKeyRepository) Create(ctx context.Context, key *surveyDomain.SurveyKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO survey_keys (id, survey_id, hash_key, iv_key, survey_name, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.SurveyID,
		key.HashKey,
		key.IVKey,
		key.SurveyName,
		key.IsActive,
		key.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create survey key")
	}
	return nil
}

// GetActiveBySurveyID returns the newest active key of a survey.
func (p *PostgreSQLSurveyKeyRepository) GetActiveBySurveyID(
	ctx context.Context,
	surveyID string,
) (*surveyDomain.SurveyKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, survey_id, hash_key, iv_key, survey_name, is_active, created_at
			  FROM survey_keys
			  WHERE survey_id = $1 AND is_active = TRUE
			  ORDER BY created_at DESC
			  LIMIT 1`

	var key surveyDomain.SurveyKey
	err := querier.QueryRowContext(ctx, query, surveyID).Scan(
		&key.ID,
		&key.SurveyID,
		&key.HashKey,
		&key.IVKey,
		&key.SurveyName,
		&key.IsActive,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, surveyDomain.ErrSurveyKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active survey key")
	}

	return &key, nil
}

// DeactivateBySurveyID marks every key of a survey inactive.
func (p *PostgreSQLSurveyKeyRepository) DeactivateBySurveyID(ctx context.Context, surveyID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE survey_keys SET is_active = FALSE WHERE survey_id = $1 AND is_active = TRUE`

	if _, err := querier.ExecContext(ctx, query, surveyID); err != nil {
		return apperrors.Wrap(err, "failed to deactivate survey keys")
	}
	return nil
}

// NewPostgreSQLSurveyKeyRepository creates a new PostgreSQL SurveyKey repository instance.
func NewPostgreSQLSurveyKeyRepository(db *sql.DB) *PostgreSQLSurveyKeyRepository {
	return &PostgreSQLSurveyKeyRepository{db: db}
}
