package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

// surveyKeyFile is the layout of a key import file:
//
//	surveys:
//	  - survey_id: ABC123
//	    survey_name: Customer feedback
//	    hash_key: 0123456789abcdef
//	    iv_key: fedcba9876543210
type surveyKeyFile struct {
	Surveys []*surveyUseCase.CreateSurveyKeyInput `yaml:"surveys"`
}

// parseSurveyKeyFile decodes a key import file, rejecting unknown fields.
func parseSurveyKeyFile(r io.Reader) ([]*surveyUseCase.CreateSurveyKeyInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file surveyKeyFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("key file is empty")
		}
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	if len(file.Surveys) == 0 {
		return nil, errors.New("key file has no surveys")
	}

	seen := make(map[string]struct{}, len(file.Surveys))
	for i, input := range file.Surveys {
		if input == nil {
			return nil, fmt.Errorf("survey key %d is empty", i+1)
		}
		if _, dup := seen[input.SurveyID]; dup {
			return nil, fmt.Errorf("survey key %d: survey %s is listed more than once", i+1, input.SurveyID)
		}
		seen[input.SurveyID] = struct{}{}
	}

	return file.Surveys, nil
}

// RunImportSurveyKeys stores every key listed in a YAML file in one transaction.
// Either all keys are imported or none are.
func RunImportSurveyKeys(
	ctx context.Context,
	surveyKeyUseCase surveyUseCase.SurveyKeyUseCase,
	logger *slog.Logger,
	io IOTuple,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	inputs, err := parseSurveyKeyFile(io.Reader)
	if err != nil {
		return err
	}

	logger.Info("importing survey keys", slog.Int("count", len(inputs)))

	keys, err := surveyKeyUseCase.Import(ctx, inputs)
	if err != nil {
		return fmt.Errorf("failed to import survey keys: %w", err)
	}

	outputs := make([]surveyKeyOutput, 0, len(keys))
	for _, key := range keys {
		outputs = append(outputs, mapSurveyKeyOutput(key))
	}

	if format == "json" {
		return outputJSON(outputs, io.Writer)
	}

	_, _ = fmt.Fprintf(io.Writer, "Imported %d survey keys\n", len(outputs))
	for _, output := range outputs {
		_, _ = fmt.Fprintf(io.Writer, "  %s  %s\n", output.SurveyID, output.ID)
	}
	return nil
}
