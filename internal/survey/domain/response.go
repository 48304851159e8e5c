package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecryptedResponse is one decrypted SurveyCake response. Numbers are kept as
// json.Number so identifiers survive without float formatting.
type DecryptedResponse map[string]any

// Title returns the survey title, or "" when absent.
func (r DecryptedResponse) Title() string {
	s, _ := r["title"].(string)
	return s
}

// RespondentID returns mbrid as a string; absent or null yields "".
func (r DecryptedResponse) RespondentID() string {
	v, ok := r["mbrid"]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// SubmitTimeRaw returns the submitTime field as sent by SurveyCake.
func (r DecryptedResponse) SubmitTimeRaw() string {
	s, _ := r["submitTime"].(string)
	return s
}

// ResultCount returns the number of answer entries in result.
func (r DecryptedResponse) ResultCount() int {
	entries, _ := r["result"].([]any)
	return len(entries)
}

// SurveyResponse is the persisted form of one survey response, unique by ResponseHash.
type SurveyResponse struct {
	ID           uuid.UUID
	SurveyHash   string
	SurveyName   string
	ResponseHash string
	RespondentID string
	SubmitTime   time.Time
	ResponseData DecryptedResponse
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSurveyResponse builds the record for a decrypted response. submitTime is
// read in loc; when it is missing or malformed now is used instead.
func NewSurveyResponse(
	data DecryptedResponse,
	surveyID, responseHash string,
	loc *time.Location,
	now time.Time,
) *SurveyResponse {
	if loc == nil {
		loc = time.UTC
	}

	submitTime, err := time.ParseInLocation(SubmitTimeLayout, data.SubmitTimeRaw(), loc)
	if err != nil {
		submitTime = now
	}

	return &SurveyResponse{
		ID:           uuid.Must(uuid.NewV7()),
		SurveyHash:   surveyID,
		SurveyName:   data.Title(),
		ResponseHash: responseHash,
		RespondentID: data.RespondentID(),
		SubmitTime:   submitTime.UTC(),
		ResponseData: data,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// ResponseDataJSON encodes ResponseData for storage.
func (r *SurveyResponse) ResponseDataJSON() (string, error) {
	b, err := json.Marshal(r.ResponseData)
	if err != nil {
		return "", fmt.Errorf("failed to encode response data: %w", err)
	}
	return string(b), nil
}

// DecodeResponseData decodes stored response data, keeping numbers as json.Number.
func DecodeResponseData(raw []byte) (DecryptedResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data DecryptedResponse
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response data: %w", err)
	}
	return data, nil
}
