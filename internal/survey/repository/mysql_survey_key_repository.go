package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// MySQLSurveyKeyRepository implements SurveyKey persistence for MySQL databases.
type MySQLSurveyKeyRepository struct {
	db *sql.DB
}

// Create inserts a new survey key.
func (m *MySQLSurveyKeyRepository) Create(ctx context.Context, key *surveyDomain.SurveyKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO survey_keys (id, survey_id, hash_key, iv_key, survey_name, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal survey key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLSurveyKeyRepository) GetActiveBySurveyID(
	ctx context.Context,
	surveyID string,
) (*surveyDomain.SurveyKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, survey_id, hash_key, iv_key, survey_name, is_active, created_at
			  FROM survey_keys
			  WHERE survey_id = ? AND is_active = TRUE
			  ORDER BY created_at DESC
			  LIMIT 1`

	var key surveyDomain.SurveyKey
	var id []byte

	err := querier.QueryRowContext(ctx, query, surveyID).Scan(
		&id,
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

	if err := key.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal survey key id")
	}

	return &key, nil
}

// DeactivateBySurveyID marks every key of a survey inactive.
func (m *MySQLSurveyKeyRepository) DeactivateBySurveyID(ctx context.Context, surveyID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE survey_keys SET is_active = FALSE WHERE survey_id = ? AND is_active = TRUE`

	if _, err := querier.ExecContext(ctx, query, surveyID); err != nil {
		return apperrors.Wrap(err, "failed to deactivate survey keys")
	}
	return nil
}

// NewMySQLSurveyKeyRepository creates a new MySQL SurveyKey repository instance.
func NewMySQLSurveyKeyRepository(db *sql.DB) *MySQLSurveyKeyRepository {
	return &MySQLSurveyKeyRepository{db: db}
}
