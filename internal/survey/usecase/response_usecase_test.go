package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyServiceMocks "github.com/allisson/surveyhook/internal/survey/service/mocks"
	surveyUsecaseMocks "github.com/allisson/surveyhook/internal/survey/usecase/mocks"
)

type responseUseCaseFixture struct {
	keyRepo      *surveyUsecaseMocks.MockSurveyKeyRepository
	keyWrapper   *surveyServiceMocks.MockKeyWrapper
	fetcher      *surveyServiceMocks.MockPayloadFetcher
	decryptor    *surveyServiceMocks.MockDecryptor
	responseRepo *surveyUsecaseMocks.MockSurveyResponseRepository
	useCase      ResponseUseCase
	now          time.Time
}

func newResponseUseCaseFixture(t *testing.T) *responseUseCaseFixture {
	t.Helper()

	f := &responseUseCaseFixture{
		keyRepo:      &surveyUsecaseMocks.MockSurveyKeyRepository{},
		keyWrapper:   &surveyServiceMocks.MockKeyWrapper{},
		fetcher:      &surveyServiceMocks.MockPayloadFetcher{},
		decryptor:    &surveyServiceMocks.MockDecryptor{},
		responseRepo: &surveyUsecaseMocks.MockSurveyResponseRepository{},
		now:          time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.useCase = NewResponseUseCase(f.keyRepo, f.keyWrapper, f.fetcher, f.decryptor, f.responseRepo, taipei, logger)
	f.useCase.(*responseUseCase).now = func() time.Time { return f.now }

	t.Cleanup(func() {
		f.keyRepo.AssertExpectations(t)
		f.keyWrapper.AssertExpectations(t)
		f.fetcher.AssertExpectations(t)
		f.decryptor.AssertExpectations(t)
		f.responseRepo.AssertExpectations(t)
	})

	return f
}

func (f *responseUseCaseFixture) expectKey(surveyID string) {
	f.keyRepo.On("GetActiveBySurveyID", mock.Anything, surveyID).
		Return(&surveyDomain.SurveyKey{
			SurveyID: surveyID,
			HashKey:  "stored-hash-key",
			IVKey:    "stored-iv-key",
			IsActive: true,
		}, nil).
		Once()
	f.keyWrapper.On("Unwrap", mock.Anything, "stored-hash-key").Return("0123456789abcdef", nil).Once()
	f.keyWrapper.On("Unwrap", mock.Anything, "stored-iv-key").Return("fedcba9876543210", nil).Once()
}

func TestResponseUseCase_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.expectKey("svid-1")

		data := surveyDomain.DecryptedResponse{
			"title":      "Customer Survey",
			"mbrid":      "member-1",
			"submitTime": "2024-03-01 09:30:00",
			"result":     []any{"a", "b"},
		}
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").Return("ciphertext", nil).Once()
		f.decryptor.On("Decrypt", "ciphertext", "0123456789abcdef", "fedcba9876543210").Return(data, nil).Once()
		f.responseRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(r *surveyDomain.SurveyResponse) bool {
			return r.ResponseHash == "hash-1" && r.SurveyHash == "svid-1"
		})).Return(nil).Once()

		response, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		require.NoError(t, err)
		assert.Equal(t, "Customer Survey", response.SurveyName)
		assert.Equal(t, "member-1", response.RespondentID)
		assert.Equal(t, time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC), response.SubmitTime)
		assert.Equal(t, f.now, response.CreatedAt)
		assert.Equal(t, data, response.ResponseData)
	})

	t.Run("Error_MissingParameters", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)

		_, err := f.useCase.Ingest(ctx, "", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrInvalidRequest)

		_, err = f.useCase.Ingest(ctx, "svid-1", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		f.keyRepo.AssertNotCalled(t, "GetActiveBySurveyID", mock.Anything, mock.Anything)
		f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_UnknownSurvey", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.keyRepo.On("GetActiveBySurveyID", mock.Anything, "unknown").
			Return(nil, surveyDomain.ErrSurveyKeyNotFound).
			Once()

		_, err := f.useCase.Ingest(ctx, "unknown", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
		f.decryptor.AssertNotCalled(t, "Decrypt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_KeyLookupFailed", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.keyRepo.On("GetActiveBySurveyID", mock.Anything, "svid-1").
			Return(nil, errors.New("connection refused")).
			Once()

		_, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyLookupFailed)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_KeyUnwrapFailed", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.keyRepo.On("GetActiveBySurveyID", mock.Anything, "svid-1").
			Return(&surveyDomain.SurveyKey{SurveyID: "svid-1", HashKey: "h", IVKey: "i"}, nil).
			Once()
		f.keyWrapper.On("Unwrap", mock.Anything, "h").Return("", errors.New("kms unavailable")).Once()

		_, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyLookupFailed)
	})

	t.Run("Error_FetchFailed", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.expectKey("svid-1")
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").
			Return("", surveyDomain.ErrFetchExhausted).
			Once()

		_, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrFetchExhausted)
		f.decryptor.AssertNotCalled(t, "Decrypt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_DecryptFailed", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.expectKey("svid-1")
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").Return("ciphertext", nil).Once()
		f.decryptor.On("Decrypt", "ciphertext", mock.Anything, mock.Anything).
			Return(nil, surveyDomain.ErrDecryptionFailed).
			Once()

		_, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrDecryptionFailed)
		f.responseRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Error_PersistFailed", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.expectKey("svid-1")
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").Return("ciphertext", nil).Once()
		f.decryptor.On("Decrypt", "ciphertext", mock.Anything, mock.Anything).
			Return(surveyDomain.DecryptedResponse{"title": "T"}, nil).
			Once()
		f.responseRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		assert.ErrorIs(t, err, surveyDomain.ErrPersistenceFailed)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("Success_SubmitTimeFallsBackToNow", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.expectKey("svid-1")
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").Return("ciphertext", nil).Once()
		f.decryptor.On("Decrypt", "ciphertext", mock.Anything, mock.Anything).
			Return(surveyDomain.DecryptedResponse{"submitTime": "yesterday"}, nil).
			Once()
		f.responseRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

		response, err := f.useCase.Ingest(ctx, "svid-1", "hash-1")
		require.NoError(t, err)
		assert.Equal(t, f.now, response.SubmitTime)
		assert.Equal(t, "", response.RespondentID)
	})
}

func TestResponseUseCase_IngestWithKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SkipsKeyStore", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)
		f.fetcher.On("Fetch", mock.Anything, "svid-1", "hash-1").Return("ciphertext", nil).Once()
		f.decryptor.On("Decrypt", "ciphertext", "default-hash-key", "default-iv-key").
			Return(surveyDomain.DecryptedResponse{"title": "T"}, nil).
			Once()
		f.responseRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

		response, err := f.useCase.IngestWithKeys(ctx, "svid-1", "hash-1", "default-hash-key", "default-iv-key")
		require.NoError(t, err)
		assert.Equal(t, "T", response.SurveyName)
		f.keyRepo.AssertNotCalled(t, "GetActiveBySurveyID", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingKeys", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)

		_, err := f.useCase.IngestWithKeys(ctx, "svid-1", "hash-1", "", "")
		assert.ErrorIs(t, err, surveyDomain.ErrSurveyKeyNotFound)
	})

	t.Run("Error_MissingParameters", func(t *testing.T) {
		f := newResponseUseCaseFixture(t)

		_, err := f.useCase.IngestWithKeys(ctx, "", "hash-1", "k", "iv")
		assert.ErrorIs(t, err, surveyDomain.ErrInvalidRequest)
	})
}
