package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	"github.com/allisson/surveyhook/internal/testutil"
)

var surveyKeyColumns = []string{"id", "survey_id", "hash_key", "iv_key", "survey_name", "is_active", "created_at"}

func TestPostgreSQLSurveyKeyRepository_GetActiveBySurveyID_SQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLSurveyKeyRepository(db)
	ctx := context.Background()
	query := regexp.QuoteMeta("WHERE survey_id = $1 AND is_active = TRUE")

	t.Run("Success", func(t *testing.T) {
		key := newTestSurveyKey("svid-1", time.Now().UTC())
		mock.ExpectQuery(query).
			WithArgs("svid-1").
			WillReturnRows(sqlmock.NewRows(surveyKeyColumns).AddRow(
				key.ID.String(), key.SurveyID, key.HashKey, key.IVKey, key.SurveyName, true, key.CreatedAt,
			))

		got, err := repo.GetActiveBySurveyID(ctx, "svid-1")
		require.NoError(t, err)
		assert.Equal(t, key.ID, got.ID)
		assert.Equal(t, key.HashKey, got.HashKey)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("svid-2").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetActiveBySurveyID(ctx, "svid-2")
		assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("QueryError", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("svid-3").WillReturnError(errors.New("connection refused"))

		_, err := repo.GetActiveBySurveyID(ctx, "svid-3")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, surveyDomain.ErrSurveyKeyNotFound)
		assert.Contains(t, err.Error(), "failed to get active survey key")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSurveyKeyRepository_CreateAndDeactivate_SQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLSurveyKeyRepository(db)
	ctx := context.Background()
	key := newTestSurveyKey("svid-1", time.Now().UTC())

	mock.ExpectExec("INSERT INTO survey_keys").
		WithArgs(key.ID, key.SurveyID, key.HashKey, key.IVKey, key.SurveyName, true, key.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE survey_keys SET is_active = FALSE")).
		WithArgs("svid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE survey_keys SET is_active = FALSE")).
		WithArgs("svid-2").
		WillReturnError(errors.New("deadlock"))

	require.NoError(t, repo.Create(ctx, key))
	require.NoError(t, repo.DeactivateBySurveyID(ctx, "svid-1"))
	assert.ErrorContains(t, repo.DeactivateBySurveyID(ctx, "svid-2"), "failed to deactivate survey keys")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSurveyKeyRepository_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSurveyKeyRepository(db)
	ctx := context.Background()

	keyID := testutil.CreateTestSurveyKey(t, db, "postgres", "svid-1", "0123456789abcdef", "fedcba9876543210")

	key, err := repo.GetActiveBySurveyID(ctx, "svid-1")
	require.NoError(t, err)
	assert.Equal(t, keyID, key.ID)

	require.NoError(t, repo.DeactivateBySurveyID(ctx, "svid-1"))
	_, err = repo.GetActiveBySurveyID(ctx, "svid-1")
	assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyNotFound)
}
