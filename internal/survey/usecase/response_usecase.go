package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyService "github.com/allisson/surveyhook/internal/survey/service"
)

// responseUseCase implements the ResponseUseCase interface.
type responseUseCase struct {
	resolver     *keyResolver
	fetcher      surveyService.PayloadFetcher
	decryptor    surveyService.Decryptor
	responseRepo SurveyResponseRepository
	location     *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

// Ingest resolves the survey's keys, fetches, decrypts and stores one response.
// It stops at the first failing stage.
func (u *responseUseCase) Ingest(
	ctx context.Context,
	surveyID, responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	if surveyID == "" || responseHash == "" {
		return nil, surveyDomain.ErrInvalidRequest
	}

	u.logger.Info("ingesting survey response",
		slog.String("svid", surveyID),
		slog.String("hash", responseHash),
	)

	hashKey, ivKey, err := u.resolver.Resolve(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return u.ingest(ctx, surveyID, responseHash, hashKey, ivKey)
}

// IngestWithKeys runs the pipeline with the given keys instead of the key store.
func (u *responseUseCase) IngestWithKeys(
	ctx context.Context,
	surveyID, responseHash, hashKey, ivKey string,
) (*surveyDomain.SurveyResponse, error) {
	if surveyID == "" || responseHash == "" {
		return nil, surveyDomain.ErrInvalidRequest
	}
	if hashKey == "" || ivKey == "" {
		return nil, surveyDomain.ErrSurveyKeyNotFound
	}

	return u.ingest(ctx, surveyID, responseHash, hashKey, ivKey)
}

func (u *responseUseCase) ingest(
	ctx context.Context,
	surveyID, responseHash, hashKey, ivKey string,
) (*surveyDomain.SurveyResponse, error) {
	ciphertext, err := u.fetcher.Fetch(ctx, surveyID, responseHash)
	if err != nil {
		return nil, err
	}

	data, err := u.decryptor.Decrypt(ciphertext, hashKey, ivKey)
	if err != nil {
		u.logger.Error("failed to decrypt survey response",
			slog.String("svid", surveyID),
			slog.String("hash", responseHash),
			slog.Any("error", err),
		)
		return nil, err
	}

	u.logger.Info("survey response decrypted",
		slog.String("svid", surveyID),
		slog.String("hash", responseHash),
		slog.String("title", data.Title()),
		slog.String("submit_time", data.SubmitTimeRaw()),
		slog.Int("answers", data.ResultCount()),
	)

	response := surveyDomain.NewSurveyResponse(data, surveyID, responseHash, u.location, u.now())

	if err := u.responseRepo.Upsert(ctx, response); err != nil {
		u.logger.Error("failed to store survey response",
			slog.String("svid", surveyID),
			slog.String("hash", responseHash),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", surveyDomain.ErrPersistenceFailed, err)
	}

	u.logger.Info("survey response stored",
		slog.String("svid", surveyID),
		slog.String("hash", responseHash),
		slog.String("respondent_id", response.RespondentID),
	)

	return response, nil
}

// NewResponseUseCase creates a new ResponseUseCase. Submit times without a zone
// are read in location.
func NewResponseUseCase(
	keyRepo SurveyKeyRepository,
	keyWrapper surveyService.KeyWrapper,
	fetcher surveyService.PayloadFetcher,
	decryptor surveyService.Decryptor,
	responseRepo SurveyResponseRepository,
	location *time.Location,
	logger *slog.Logger,
) ResponseUseCase {
	return &responseUseCase{
		resolver: &keyResolver{
			keyRepo:    keyRepo,
			keyWrapper: keyWrapper,
			logger:     logger,
		},
		fetcher:      fetcher,
		decryptor:    decryptor,
		responseRepo: responseRepo,
		location:     location,
		now:          time.Now,
		logger:       logger,
	}
}
