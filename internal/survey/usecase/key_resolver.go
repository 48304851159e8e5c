package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyService "github.com/allisson/surveyhook/internal/survey/service"
)

// keyResolver looks up the usable key material of a survey.
type keyResolver struct {
	keyRepo    SurveyKeyRepository
	keyWrapper surveyService.KeyWrapper
	logger     *slog.Logger
}

// Resolve returns the plaintext hash key and IV of the survey's active key.
// Missing keys yield ErrSurveyKeyNotFound; any other failure yields
// ErrSurveyKeyLookupFailed. Both are ErrNotFound to callers.
func (r *keyResolver) Resolve(ctx context.Context, surveyID string) (string, string, error) {
	key, err := r.keyRepo.GetActiveBySurveyID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, surveyDomain.ErrSurveyKeyNotFound) {
			r.logger.Warn("no active survey key", slog.String("svid", surveyID))
			return "", "", err
		}
		r.logger.Error("survey key lookup failed", slog.String("svid", surveyID), slog.Any("error", err))
		return "", "", fmt.Errorf("%w: %v", surveyDomain.ErrSurveyKeyLookupFailed, err)
	}

	hashKey, err := r.keyWrapper.Unwrap(ctx, key.HashKey)
	if err != nil {
		r.logger.Error("failed to unwrap survey hash key", slog.String("svid", surveyID), slog.Any("error", err))
		return "", "", fmt.Errorf("%w: %v", surveyDomain.ErrSurveyKeyLookupFailed, err)
	}

	ivKey, err := r.keyWrapper.Unwrap(ctx, key.IVKey)
	if err != nil {
		r.logger.Error("failed to unwrap survey iv key", slog.String("svid", surveyID), slog.Any("error", err))
		return "", "", fmt.Errorf("%w: %v", surveyDomain.ErrSurveyKeyLookupFailed, err)
	}

	r.logger.Debug("survey key resolved",
		slog.String("svid", surveyID),
		slog.String("survey_name", key.SurveyName),
	)

	return hashKey, ivKey, nil
}
