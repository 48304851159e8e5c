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

// surveyKeyOutput is the printable view of a stored key. Key material is never printed.
type surveyKeyOutput struct {
	ID         string    `json:"id"`
	SurveyID   string    `json:"survey_id"`
	SurveyName string    `json:"survey_name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func mapSurveyKeyOutput(key *surveyDomain.SurveyKey) surveyKeyOutput {
	return surveyKeyOutput{
		ID:         key.ID.String(),
		SurveyID:   key.SurveyID,
		SurveyName: key.SurveyName,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt,
	}
}

// RunCreateSurveyKey registers the hash key and IV of a survey, replacing its
// previously active key. Key material is wrapped with KMS_KEY_URI when set.
func RunCreateSurveyKey(
	ctx context.Context,
	surveyKeyUseCase surveyUseCase.SurveyKeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	input *surveyUseCase.CreateSurveyKeyInput,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("creating survey key", slog.String("survey_id", input.SurveyID))

	key, err := surveyKeyUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create survey key: %w", err)
	}

	logger.Info("survey key created",
		slog.String("id", key.ID.String()),
		slog.String("survey_id", key.SurveyID),
	)

	output := mapSurveyKeyOutput(key)
	if format == "json" {
		return outputJSON(output, writer)
	}

	_, _ = fmt.Fprintln(writer, "Survey key created successfully!")
	_, _ = fmt.Fprintf(writer, "ID: %s\n", output.ID)
	_, _ = fmt.Fprintf(writer, "Survey ID: %s\n", output.SurveyID)
	if output.SurveyName != "" {
		_, _ = fmt.Fprintf(writer, "Survey name: %s\n", output.SurveyName)
	}
	return nil
}
