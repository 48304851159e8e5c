// Package domain defines the survey response ingestion domain models and errors.
package domain

import (
	"github.com/allisson/surveyhook/internal/errors"
)

// Ingestion error definitions, one per pipeline stage.
var (
	// ErrInvalidRequest indicates the webhook call is not a form or lacks svid/hash.
	ErrInvalidRequest = errors.Wrap(errors.ErrInvalidInput, "missing or invalid webhook parameters")

	// ErrSurveyKeyNotFound indicates no active key configuration exists for the survey.
	ErrSurveyKeyNotFound = errors.Wrap(errors.ErrNotFound, "survey key not found")

	// ErrSurveyKeyLookupFailed indicates the key store could not be queried. It is
	// reported to callers the same way as a missing key.
	ErrSurveyKeyLookupFailed = errors.Wrap(errors.ErrNotFound, "survey key lookup failed")

	// ErrFetchExhausted indicates no valid payload was obtained within the retry budget.
	ErrFetchExhausted = errors.Wrap(errors.ErrUpstream, "surveycake fetch exhausted")

	// ErrRemoteRejected indicates SurveyCake answered with a non-transient error.
	ErrRemoteRejected = errors.Wrap(errors.ErrUpstream, "surveycake rejected request")

	// ErrDecryptionFailed indicates the payload could not be decrypted into a JSON object.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrPersistenceFailed indicates the response record could not be stored.
	ErrPersistenceFailed = errors.New("persistence failed")
)
