package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/surveyhook/internal/database"
	apperrors "github.com/allisson/surveyhook/internal/errors"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyService "github.com/allisson/surveyhook/internal/survey/service"
)

// surveyKeyUseCase implements the SurveyKeyUseCase interface.
type surveyKeyUseCase struct {
	txManager  database.TxManager
	keyRepo    SurveyKeyRepository
	keyWrapper surveyService.KeyWrapper
	logger     *slog.Logger
}

// Create stores a new active key for a survey, deactivating its previous keys.
func (u *surveyKeyUseCase) Create(
	ctx context.Context,
	input *CreateSurveyKeyInput,
) (*surveyDomain.SurveyKey, error) {
	created, err := u.Import(ctx, []*CreateSurveyKeyInput{input})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// Import creates every key in one transaction and returns the stored keys.
// Nothing is stored when any input is invalid.
func (u *surveyKeyUseCase) Import(
	ctx context.Context,
	inputs []*CreateSurveyKeyInput,
) ([]*surveyDomain.SurveyKey, error) {
	keys := make([]*surveyDomain.SurveyKey, 0, len(inputs))
	for i, input := range inputs {
		if err := input.Validate(); err != nil {
			return nil, apperrors.Wrapf(err, "survey key %d", i+1)
		}
		key, err := u.newSurveyKey(ctx, input)
		if err != nil {
			return nil, apperrors.Wrapf(err, "survey key %d", i+1)
		}
		keys = append(keys, key)
	}

	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for _, key := range keys {
			if err := u.keyRepo.DeactivateBySurveyID(txCtx, key.SurveyID); err != nil {
				return err
			}
			if err := u.keyRepo.Create(txCtx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		u.logger.Info("survey key created",
			slog.String("svid", key.SurveyID),
			slog.String("survey_name", key.SurveyName),
			slog.String("id", key.ID.String()),
		)
	}

	return keys, nil
}

// newSurveyKey validates the plaintext input and returns the key to store.
func (u *surveyKeyUseCase) newSurveyKey(
	ctx context.Context,
	input *CreateSurveyKeyInput,
) (*surveyDomain.SurveyKey, error) {
	key := &surveyDomain.SurveyKey{
		ID:         uuid.Must(uuid.NewV7()),
		SurveyID:   input.SurveyID,
		HashKey:    input.HashKey,
		IVKey:      input.IVKey,
		SurveyName: input.SurveyName,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := key.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	var err error
	if key.HashKey, err = u.keyWrapper.Wrap(ctx, input.HashKey); err != nil {
		return nil, fmt.Errorf("failed to wrap hash key: %w", err)
	}
	if key.IVKey, err = u.keyWrapper.Wrap(ctx, input.IVKey); err != nil {
		return nil, fmt.Errorf("failed to wrap iv key: %w", err)
	}

	return key, nil
}

// NewSurveyKeyUseCase creates a new SurveyKeyUseCase.
func NewSurveyKeyUseCase(
	txManager database.TxManager,
	keyRepo SurveyKeyRepository,
	keyWrapper surveyService.KeyWrapper,
	logger *slog.Logger,
) SurveyKeyUseCase {
	return &surveyKeyUseCase{
		txManager:  txManager,
		keyRepo:    keyRepo,
		keyWrapper: keyWrapper,
		logger:     logger,
	}
}
