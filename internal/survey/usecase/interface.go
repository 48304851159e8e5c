// Package usecase defines the interfaces and implementations for survey response ingestion.
// Use cases orchestrate the key store, the SurveyCake client, the decryptor and the
// response store to turn a webhook notification into a stored response.
package usecase

import (
	"context"

	validation "github.com/jellydator/validation"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	customValidation "github.com/allisson/surveyhook/internal/validation"
)

// SurveyKeyRepository defines the interface for SurveyKey persistence operations.
type SurveyKeyRepository interface {
	Create(ctx context.Context, key *surveyDomain.SurveyKey) error
	GetActiveBySurveyID(ctx context.Context, surveyID string) (*surveyDomain.SurveyKey, error)
	DeactivateBySurveyID(ctx context.Context, surveyID string) error
}

// SurveyResponseRepository defines the interface for SurveyResponse persistence operations.
type SurveyResponseRepository interface {
	// Upsert stores the response, replacing the data of an existing row with the same response hash.
	Upsert(ctx context.Context, response *surveyDomain.SurveyResponse) error
	GetByResponseHash(ctx context.Context, responseHash string) (*surveyDomain.SurveyResponse, error)
	Ping(ctx context.Context) error
}

// ResponseUseCase defines the interface for the ingestion pipeline.
type ResponseUseCase interface {
	// Ingest resolves the survey's keys, fetches, decrypts and stores one response.
	Ingest(ctx context.Context, surveyID, responseHash string) (*surveyDomain.SurveyResponse, error)
	// IngestWithKeys runs the pipeline with the given keys instead of the key store.
	IngestWithKeys(
		ctx context.Context,
		surveyID, responseHash, hashKey, ivKey string,
	) (*surveyDomain.SurveyResponse, error)
}

// SurveyKeyUseCase defines the interface for survey key management.
type SurveyKeyUseCase interface {
	// Create stores a new active key for a survey, deactivating its previous keys.
	Create(ctx context.Context, input *CreateSurveyKeyInput) (*surveyDomain.SurveyKey, error)
	// Import creates every key in one transaction and returns the stored keys.
	Import(ctx context.Context, inputs []*CreateSurveyKeyInput) ([]*surveyDomain.SurveyKey, error)
}

// CreateSurveyKeyInput holds plaintext key material for a survey.
type CreateSurveyKeyInput struct {
	SurveyID   string `yaml:"survey_id"`
	SurveyName string `yaml:"survey_name"`
	HashKey    string `yaml:"hash_key"`
	IVKey      string `yaml:"iv_key"`
}

// Validate checks the input before any key material is wrapped or stored.
func (i *CreateSurveyKeyInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.SurveyID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.URLSafe,
			validation.Length(1, surveyDomain.MaxSurveyIDLength),
		),
		validation.Field(&i.SurveyName, customValidation.NoWhitespace, validation.Length(0, 255)),
		validation.Field(&i.HashKey, validation.Required, customValidation.AESKey),
		validation.Field(&i.IVKey, validation.Required, validation.Length(surveyDomain.BlockSize, surveyDomain.BlockSize)),
	)
	return customValidation.WrapValidationError(err)
}
