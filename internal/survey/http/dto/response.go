package dto

import (
	"github.com/allisson/surveyhook/internal/httputil"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// WebhookResponse is returned once a response has been stored.
type WebhookResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	SurveyID     string `json:"survey_id"`
	ResponseHash string `json:"response_hash"`
}

// MapSurveyResponseToWebhookResponse converts a stored record to the webhook reply.
func MapSurveyResponseToWebhookResponse(record *surveyDomain.SurveyResponse) WebhookResponse {
	return WebhookResponse{
		Status:       httputil.StatusSuccess,
		Message:      "response stored",
		SurveyID:     record.SurveyHash,
		ResponseHash: record.ResponseHash,
	}
}
