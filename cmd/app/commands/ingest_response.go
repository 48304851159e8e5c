package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

// IngestOptions selects the keys used by RunIngestResponse.
type IngestOptions struct {
	// UseDefaultKeys decrypts with HashKey and IVKey instead of the key store.
	UseDefaultKeys bool
	HashKey        string
	IVKey          string
}

type ingestOutput struct {
	SurveyID     string    `json:"survey_id"`
	ResponseHash string    `json:"response_hash"`
	SurveyName   string    `json:"survey_name"`
	RespondentID string    `json:"respondent_id"`
	SubmitTime   time.Time `json:"submit_time"`
	Answers      int       `json:"answers"`
}

// RunIngestResponse runs one response through the webhook pipeline by hand, for
// replaying deliveries that failed.
func RunIngestResponse(
	ctx context.Context,
	responseUseCase surveyUseCase.ResponseUseCase,
	logger *slog.Logger,
	writer io.Writer,
	surveyID, responseHash string,
	opts IngestOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("ingesting response",
		slog.String("svid", surveyID),
		slog.String("hash", responseHash),
		slog.Bool("use_default_keys", opts.UseDefaultKeys),
	)

	var (
		record *surveyDomain.SurveyResponse
		err    error
	)
	if opts.UseDefaultKeys {
		record, err = responseUseCase.IngestWithKeys(ctx, surveyID, responseHash, opts.HashKey, opts.IVKey)
	} else {
		record, err = responseUseCase.Ingest(ctx, surveyID, responseHash)
	}
	if err != nil {
		return fmt.Errorf("failed to ingest response: %w", err)
	}

	output := ingestOutput{
		SurveyID:     record.SurveyHash,
		ResponseHash: record.ResponseHash,
		SurveyName:   record.SurveyName,
		RespondentID: record.RespondentID,
		SubmitTime:   record.SubmitTime,
		Answers:      record.ResponseData.ResultCount(),
	}

	if format == "json" {
		return outputJSON(output, writer)
	}

	_, _ = fmt.Fprintln(writer, "Response stored successfully!")
	_, _ = fmt.Fprintf(writer, "Survey: %s (%s)\n", output.SurveyID, output.SurveyName)
	_, _ = fmt.Fprintf(writer, "Response hash: %s\n", output.ResponseHash)
	_, _ = fmt.Fprintf(writer, "Respondent: %s\n", output.RespondentID)
	_, _ = fmt.Fprintf(writer, "Submitted at: %s\n", output.SubmitTime.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Answers: %d\n", output.Answers)
	return nil
}
