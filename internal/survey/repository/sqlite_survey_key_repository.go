package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// SQLiteSurveyKeyRepository implements SurveyKey persistence for SQLite databases.
// Ids are stored as their canonical text form.
type SQLiteSurveyKeyRepository struct {
	db *sql.DB
}

// Create inserts a new survey key.
func (s *SQLiteSurveyKeyRepository) Create(ctx context.Context, key *surveyDomain.SurveyKey) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO survey_keys (id, survey_id, hash_key, iv_key, survey_name, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID.String(),
		key.SurveyID,
		key.HashKey,
		key.IVKey,
		key.SurveyName,
		key.IsActive,
		key.CreatedAt.UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create survey key")
	}
	return nil
}

// GetActiveBySurveyID returns the newest active key of a survey.
func (s *SQLiteSurveyKeyRepository) GetActiveBySurveyID(
	ctx context.Context,
	surveyID string,
) (*surveyDomain.SurveyKey, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, survey_id, hash_key, iv_key, survey_name, is_active, created_at
			  FROM survey_keys
			  WHERE survey_id = ? AND is_active = 1
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
func (s *SQLiteSurveyKeyRepository) DeactivateBySurveyID(ctx context.Context, surveyID string) error {
	querier := database.GetTx(ctx, s.db)

	query := `UPDATE survey_keys SET is_active = 0 WHERE survey_id = ? AND is_active = 1`

	if _, err := querier.ExecContext(ctx, query, surveyID); err != nil {
		return apperrors.Wrap(err, "failed to deactivate survey keys")
	}
	return nil
}

// NewSQLiteSurveyKeyRepository creates a new SQLite SurveyKey repository instance.
func NewSQLiteSurveyKeyRepository(db *sql.DB) *SQLiteSurveyKeyRepository {
	return &SQLiteSurveyKeyRepository{db: db}
}
