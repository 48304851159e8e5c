package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// SQLiteSurveyResponseRepository implements SurveyResponse persistence for SQLite databases.
type SQLiteSurveyResponseRepository struct {
	db *sql.DB
}

// Upsert inserts the response or, when response_hash already exists, overwrites
// its data fields. id and created_at of an existing row are kept.
func (s *SQLiteSurveyResponseRepository) Upsert(
	ctx context.Context,
	response *surveyDomain.SurveyResponse,
) error {
	querier := database.GetTx(ctx, s.db)

	data, err := response.ResponseDataJSON()
	if err != nil {
		return err
	}

	query := `INSERT INTO survey_responses
			  (id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT (response_hash) DO UPDATE SET
			  survey_hash = excluded.survey_hash,
			  survey_name = excluded.survey_name,
			  respondent_id = excluded.respondent_id,
			  submit_time = excluded.submit_time,
			  response_data = excluded.response_data,
			  updated_at = excluded.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		response.ID.String(),
		response.SurveyHash,
		response.SurveyName,
		response.ResponseHash,
		response.RespondentID,
		response.SubmitTime.UTC(),
		data,
		response.CreatedAt.UTC(),
		response.UpdatedAt.UTC(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert survey response")
	}
	return nil
}

// GetByResponseHash returns the stored response for a response hash.
func (s *SQLiteSurveyResponseRepository) GetByResponseHash(
	ctx context.Context,
	responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at
			  FROM survey_responses
			  WHERE response_hash = ?`

	var response surveyDomain.SurveyResponse
	var data string

	err := querier.QueryRowContext(ctx, query, responseHash).Scan(
		&response.ID,
		&response.SurveyHash,
		&response.SurveyName,
		&response.ResponseHash,
		&response.RespondentID,
		&response.SubmitTime,
		&data,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get survey response")
	}

	if response.ResponseData, err = surveyDomain.DecodeResponseData([]byte(data)); err != nil {
		return nil, err
	}

	return &response, nil
}

// Ping checks that the database answers and the responses table exists.
func (s *SQLiteSurveyResponseRepository) Ping(ctx context.Context) error {
	return checkHealth(ctx, database.GetTx(ctx, s.db))
}

// NewSQLiteSurveyResponseRepository creates a new SQLite SurveyResponse repository instance.
func NewSQLiteSurveyResponseRepository(db *sql.DB) *SQLiteSurveyResponseRepository {
	return &SQLiteSurveyResponseRepository{db: db}
}
