package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/surveyhook/cmd/app/commands"
	"github.com/allisson/surveyhook/internal/app"
	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

// formatFlag returns a fresh flag per command; cli flags hold their parsed value.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getSurveyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-survey-key",
			Usage: "Register the hash key and IV of a survey",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "survey-id",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "SurveyCake survey identifier (svid)",
				},
				&cli.StringFlag{
					Name:    "survey-name",
					Aliases: []string{"n"},
					Usage:   "Human-readable survey name",
				},
				&cli.StringFlag{
					Name:     "hash-key",
					Required: true,
					Usage:    "AES key from the SurveyCake console (16, 24 or 32 characters)",
				},
				&cli.StringFlag{
					Name:     "iv-key",
					Required: true,
					Usage:    "AES IV from the SurveyCake console (16 characters)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := commands.LoadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				surveyKeyUseCase, err := container.SurveyKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSurveyKey(
					ctx,
					surveyKeyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					&surveyUseCase.CreateSurveyKeyInput{
						SurveyID:   cmd.String("survey-id"),
						SurveyName: cmd.String("survey-name"),
						HashKey:    cmd.String("hash-key"),
						IVKey:      cmd.String("iv-key"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "import-survey-keys",
			Usage: "Register every survey key listed in a YAML file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "file",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Path to the YAML key file ('-' reads stdin)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := commands.LoadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				surveyKeyUseCase, err := container.SurveyKeyUseCase()
				if err != nil {
					return err
				}

				streams := commands.DefaultIO()
				if path := cmd.String("file"); path != "-" {
					file, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("failed to open key file: %w", err)
					}
					defer func() { _ = file.Close() }()
					streams.Reader = file
				}

				return commands.RunImportSurveyKeys(
					ctx,
					surveyKeyUseCase,
					container.Logger(),
					streams,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "ingest-response",
			Usage: "Fetch, decrypt and store one survey response",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "svid",
					Required: true,
					Usage:    "SurveyCake survey identifier",
				},
				&cli.StringFlag{
					Name:     "hash",
					Required: true,
					Usage:    "Response hash delivered by the webhook",
				},
				&cli.BoolFlag{
					Name:  "use-default-keys",
					Usage: "Decrypt with SURVEYCAKE_HASH_KEY and SURVEYCAKE_IV_KEY instead of the key store",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := commands.LoadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				responseUseCase, err := container.ResponseUseCase()
				if err != nil {
					return err
				}

				return commands.RunIngestResponse(
					ctx,
					responseUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("svid"),
					cmd.String("hash"),
					commands.IngestOptions{
						UseDefaultKeys: cmd.Bool("use-default-keys"),
						HashKey:        cfg.SurveyCakeHashKey,
						IVKey:          cfg.SurveyCakeIVKey,
					},
					cmd.String("format"),
				)
			},
		},
	}
}
