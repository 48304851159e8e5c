// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	customValidation "github.com/allisson/surveyhook/internal/validation"
)

// WebhookRequest is the form SurveyCake posts when a response is submitted.
type WebhookRequest struct {
	SurveyID     string `form:"svid"`
	ResponseHash string `form:"hash"`
}

// Validate checks that both identifiers are present and usable as URL path segments.
func (r *WebhookRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SurveyID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.URLSafe,
			validation.Length(1, surveyDomain.MaxSurveyIDLength),
		),
		validation.Field(&r.ResponseHash,
			validation.Required,
			customValidation.NotBlank,
			customValidation.URLSafe,
			validation.Length(1, 255),
		),
	)
}
