package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// MySQLSurveyResponseRepository implements SurveyResponse persistence for MySQL databases.
type MySQLSurveyResponseRepository struct {
	db *sql.DB
}

// Upsert inserts the response or, when response_hash already exists, overwrites
// its data fields. id and created_at of an existing row are kept.
func (m *MySQLSurveyResponseRepository) Upsert(
	ctx context.Context,
	response *surveyDomain.SurveyResponse,
) error {
	querier := database.GetTx(ctx, m.db)

	data, err := response.ResponseDataJSON()
	if err != nil {
		return err
	}

	id, err := response.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal survey response id")
	}

	query := `INSERT INTO survey_responses
			  (id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  survey_hash = VALUES(survey_hash),
			  survey_name = VALUES(survey_name),
			  respondent_id = VALUES(respondent_id),
			  submit_time = VALUES(submit_time),
			  response_data = VALUES(response_data),
			  updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLSurveyResponseRepository) GetByResponseHash(
	ctx context.Context,
	responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, survey_hash, survey_name, response_hash, respondent_id, submit_time, response_data, created_at, updated_at
			  FROM survey_responses
			  WHERE response_hash = ?`

	var response surveyDomain.SurveyResponse
	var id, data []byte

	err := querier.QueryRowContext(ctx, query, responseHash).Scan(
		&id,
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

	if err := response.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal survey response id")
	}
	if response.ResponseData, err = surveyDomain.DecodeResponseData(data); err != nil {
		return nil, err
	}

	return &response, nil
}

// Ping checks that the database answers and the responses table exists.
func (m *MySQLSurveyResponseRepository) Ping(ctx context.Context) error {
	return checkHealth(ctx, database.GetTx(ctx, m.db))
}

// NewMySQLSurveyResponseRepository creates a new MySQL SurveyResponse repository instance.
func NewMySQLSurveyResponseRepository(db *sql.DB) *MySQLSurveyResponseRepository {
	return &MySQLSurveyResponseRepository{db: db}
}
