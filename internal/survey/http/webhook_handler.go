// Package http provides the HTTP handler that receives SurveyCake webhook deliveries
// and runs them through the ingestion pipeline.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "github.com/allisson/surveyhook/internal/errors"
	"github.com/allisson/surveyhook/internal/httputil"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	"github.com/allisson/surveyhook/internal/survey/http/dto"
	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

const (
	msgUnsupportedFormat = "unsupported request format"
	msgMissingParams     = "missing required parameters (svid or hash)"
	msgFetchFailed       = "failed to fetch data from SurveyCake API"
	msgDecryptFailed     = "decryption failed"
	msgStoreFailed       = "failed to store response"
)

// WebhookHandler handles SurveyCake webhook deliveries.
type WebhookHandler struct {
	responseUseCase surveyUseCase.ResponseUseCase
	logger          *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(responseUseCase surveyUseCase.ResponseUseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		responseUseCase: responseUseCase,
		logger:          logger,
	}
}

// ReceiveHandler ingests one submitted response.
// POST /webhook/surveycake - form fields svid and hash.
// Returns 200 once the response is stored, 400 for bad input, 404 when the survey
// has no key configuration and 500 when fetching, decrypting or storing fails.
func (h *WebhookHandler) ReceiveHandler(c *gin.Context) {
	var formBinding binding.Binding
	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		formBinding = binding.FormPost
	case binding.MIMEMultipartPOSTForm:
		formBinding = binding.FormMultipart
	default:
		httputil.HandleBadRequestGin(
			c,
			msgUnsupportedFormat,
			apperrors.Wrapf(surveyDomain.ErrInvalidRequest, "content type %q", c.ContentType()),
			h.logger,
		)
		return
	}

	var req dto.WebhookRequest
	if err := c.ShouldBindWith(&req, formBinding); err != nil {
		httputil.HandleBadRequestGin(c, msgUnsupportedFormat, apperrors.Wrap(surveyDomain.ErrInvalidRequest, err.Error()), h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(surveyDomain.ErrInvalidRequest, err.Error()), msgMissingParams, h.logger)
		return
	}

	h.logger.Info("webhook received",
		slog.String("survey_id", req.SurveyID),
		slog.String("response_hash", req.ResponseHash),
	)

	record, err := h.responseUseCase.Ingest(c.Request.Context(), req.SurveyID, req.ResponseHash)
	if err != nil {
		httputil.HandleErrorGin(c, err, failureMessage(err, req.SurveyID), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSurveyResponseToWebhookResponse(record))
}

// failureMessage names the pipeline stage that failed. Lookup errors and missing
// keys share one message.
func failureMessage(err error, surveyID string) string {
	switch {
	case apperrors.Is(err, surveyDomain.ErrInvalidRequest):
		return msgMissingParams
	case apperrors.Is(err, surveyDomain.ErrSurveyKeyNotFound),
		apperrors.Is(err, surveyDomain.ErrSurveyKeyLookupFailed):
		return fmt.Sprintf("no key configuration found for survey %s", surveyID)
	case apperrors.Is(err, surveyDomain.ErrFetchExhausted),
		apperrors.Is(err, surveyDomain.ErrRemoteRejected):
		return msgFetchFailed
	case apperrors.Is(err, surveyDomain.ErrDecryptionFailed):
		return msgDecryptFailed
	case apperrors.Is(err, surveyDomain.ErrPersistenceFailed):
		return msgStoreFailed
	default:
		return err.Error()
	}
}
