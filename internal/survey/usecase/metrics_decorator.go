package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/allisson/surveyhook/internal/metrics"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// responseUseCaseWithMetrics decorates ResponseUseCase with metrics instrumentation.
type responseUseCaseWithMetrics struct {
	next    ResponseUseCase
	metrics metrics.BusinessMetrics
}

// NewResponseUseCaseWithMetrics wraps a ResponseUseCase with metrics recording.
func NewResponseUseCaseWithMetrics(useCase ResponseUseCase, m metrics.BusinessMetrics) ResponseUseCase {
	return &responseUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Ingest records metrics for webhook-driven ingestion.
func (r *responseUseCaseWithMetrics) Ingest(
	ctx context.Context,
	surveyID, responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	start := time.Now()
	response, err := r.next.Ingest(ctx, surveyID, responseHash)
	r.record(ctx, "response_ingest", start, err)
	return response, err
}

// IngestWithKeys records metrics for ingestion with explicit keys.
func (r *responseUseCaseWithMetrics) IngestWithKeys(
	ctx context.Context,
	surveyID, responseHash, hashKey, ivKey string,
) (*surveyDomain.SurveyResponse, error) {
	start := time.Now()
	response, err := r.next.IngestWithKeys(ctx, surveyID, responseHash, hashKey, ivKey)
	r.record(ctx, "response_ingest_with_keys", start, err)
	return response, err
}

func (r *responseUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := ingestOutcome(err)
	r.metrics.RecordOperation(ctx, "survey", operation, status)
	r.metrics.RecordDuration(ctx, "survey", operation, time.Since(start), status)
}

// ingestOutcome labels a result with the pipeline stage that failed.
func ingestOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, surveyDomain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, surveyDomain.ErrSurveyKeyNotFound),
		errors.Is(err, surveyDomain.ErrSurveyKeyLookupFailed):
		return "key_not_found"
	case errors.Is(err, surveyDomain.ErrFetchExhausted),
		errors.Is(err, surveyDomain.ErrRemoteRejected):
		return "fetch_failed"
	case errors.Is(err, surveyDomain.ErrDecryptionFailed):
		return "decrypt_failed"
	case errors.Is(err, surveyDomain.ErrPersistenceFailed):
		return "store_failed"
	default:
		return metrics.OutcomeError
	}
}
