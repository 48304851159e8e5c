package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// PostgreSQLSurveyResponseRepository implements SurveyResponse persistence for PostgreSQL databases.
type PostgreSQLSurveyResponseRepository struct {
	db *sql.DB
}

// Upsert inserts the response or, when response_hash already exists, overwrites
// its data fields. id and created_at of an existing row are kept.
func (p *PostgreSQLSurveyResponseRepository) Upsert(
	ctx context.Context,
	response *surveyDomain.SurveyResponse,
) error {
	querier := database.GetTx(ctx, p.db)

	data, err := response.ResponseDataJSON()
	if err != nil {
		return err
	}

	query := `INSERT INTO survey_responses
			  (id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (response_hash) DO UPDATE SET
			  survey_hash = EXCLUDED.survey_hash,
			  survey_name = EXCLUDED.survey_name,
			  respondent_id = EXCLUDED.respondent_id,
			  submit_time = EXCLUDED.submit_time,
			  response_data = EXCLUDED.response_data,
			  updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		response.ID,
		response.SurveyHash,
		response.SurveyName,
		response.ResponseHash,
		response.RespondentID,
		response.SubmitTime,
		data,
		response.CreatedAt,
		response.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert survey response")
	}
	return nil
}

// GetByResponseHash returns the stored response for a response hash.
func (p *PostgreSQLSurveyResponseRepository) GetByResponseHash(
	ctx context.Context,
	responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at
			  FROM survey_responses
			  WHERE response_hash = $1`

	var response surveyDomain.SurveyResponse
	var data []byte

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

	if response.ResponseData, err = surveyDomain.DecodeResponseData(data); err != nil {
		return nil, err
	}

	return &response, nil
}

// Ping checks that the database answers and the responses table exists.
func (p *PostgreSQLSurveyResponseRepository) Ping(ctx context.Context) error {
	return checkHealth(ctx, database.GetTx(ctx, p.db))
}

// NewPostgreSQLSurveyResponseRepository creates a new PostgreSQL SurveyResponse repository instance.
func NewPostgreSQLSurveyResponseRepository(db *sql.DB) *PostgreSQLSurveyResponseRepository {
	return &PostgreSQLSurveyResponseRepository{db: db}
}
