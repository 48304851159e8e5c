package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/allisson/surveyhook/internal/database"
	"github.com/allisson/surveyhook/internal/retry"
	surveyHTTP "github.com/allisson/surveyhook/internal/survey/http"
	surveyRepository "github.com/allisson/surveyhook/internal/survey/repository"
	surveyService "github.com/allisson/surveyhook/internal/survey/service"
	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

// SurveyKeyRepository returns the survey key repository based on database driver.
func (c *Container) SurveyKeyRepository() (surveyUseCase.SurveyKeyRepository, error) {
	var err error
	c.surveyKeyRepositoryInit.Do(func() {
		c.surveyKeyRepository, err = c.initSurveyKeyRepository()
		if err != nil {
			c.initErrors["surveyKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["surveyKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.surveyKeyRepository, nil
}

// SurveyResponseRepository returns the survey response repository based on database driver.
func (c *Container) SurveyResponseRepository() (surveyUseCase.SurveyResponseRepository, error) {
	var err error
	c.surveyResponseRepositoryInit.Do(func() {
		c.surveyResponseRepository, err = c.initSurveyResponseRepository()
		if err != nil {
			c.initErrors["surveyResponseRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["surveyResponseRepository"]; exists {
		return nil, storedErr
	}
	return c.surveyResponseRepository, nil
}

// KeyWrapper returns the wrapper protecting survey key material at rest.
// Without KMS_KEY_URI keys are stored as given.
func (c *Container) KeyWrapper() (surveyService.KeyWrapper, error) {
	var err error
	c.keyWrapperInit.Do(func() {
		c.keyWrapper, err = c.initKeyWrapper()
		if err != nil {
			c.initErrors["keyWrapper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyWrapper"]; exists {
		return nil, storedErr
	}
	return c.keyWrapper, nil
}

// PayloadFetcher returns the SurveyCake API client.
func (c *Container) PayloadFetcher() surveyService.PayloadFetcher {
	c.payloadFetcherInit.Do(func() {
		c.payloadFetcher = c.initPayloadFetcher()
	})
	return c.payloadFetcher
}

// Decryptor returns the response payload decryptor.
func (c *Container) Decryptor() surveyService.Decryptor {
	c.decryptorInit.Do(func() {
		c.decryptor = surveyService.NewCBCDecryptor(c.Logger())
	})
	return c.decryptor
}

// ResponseUseCase returns the response ingestion use case.
func (c *Container) ResponseUseCase() (surveyUseCase.ResponseUseCase, error) {
	var err error
	c.responseUseCaseInit.Do(func() {
		c.responseUseCase, err = c.initResponseUseCase()
		if err != nil {
			c.initErrors["responseUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["responseUseCase"]; exists {
		return nil, storedErr
	}
	return c.responseUseCase, nil
}

// SurveyKeyUseCase returns the survey key management use case.
func (c *Container) SurveyKeyUseCase() (surveyUseCase.SurveyKeyUseCase, error) {
	var err error
	c.surveyKeyUseCaseInit.Do(func() {
		c.surveyKeyUseCase, err = c.initSurveyKeyUseCase()
		if err != nil {
			c.initErrors["surveyKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["surveyKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.surveyKeyUseCase, nil
}

// WebhookHandler returns the HTTP handler for SurveyCake webhook deliveries.
func (c *Container) WebhookHandler() (*surveyHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.initErrors["webhookHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookHandler"]; exists {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

// initSurveyKeyRepository creates the survey key repository based on the database driver.
func (c *Container) initSurveyKeyRepository() (surveyUseCase.SurveyKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for survey key repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return surveyRepository.NewPostgreSQLSurveyKeyRepository(db), nil
	case database.DriverMySQL:
		return surveyRepository.NewMySQLSurveyKeyRepository(db), nil
	case database.DriverSQLite:
		return surveyRepository.NewSQLiteSurveyKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSurveyResponseRepository creates the survey response repository based on the database driver.
func (c *Container) initSurveyResponseRepository() (surveyUseCase.SurveyResponseRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for survey response repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return surveyRepository.NewPostgreSQLSurveyResponseRepository(db), nil
	case database.DriverMySQL:
		return surveyRepository.NewMySQLSurveyResponseRepository(db), nil
	case database.DriverSQLite:
		return surveyRepository.NewSQLiteSurveyResponseRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyWrapper opens the KMS keeper named by KMS_KEY_URI, if any.
func (c *Container) initKeyWrapper() (surveyService.KeyWrapper, error) {
	if c.config.KMSKeyURI == "" {
		return surveyService.NewPlaintextKeyWrapper(), nil
	}

	wrapper, err := surveyService.OpenKMSKeyWrapper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms key wrapper: %w", err)
	}
	return wrapper, nil
}

// initPayloadFetcher creates the SurveyCake client with the configured retry policy.
func (c *Container) initPayloadFetcher() surveyService.PayloadFetcher {
	policy := retry.NewFixed(c.config.APIMaxRetries, c.config.APIRetryDelay, c.config.APITimeout)

	return surveyService.NewSurveyCakeClient(
		&http.Client{},
		c.config.SurveyCakeDomain,
		c.config.SurveyCakeAPIVersion,
		policy,
		c.Logger(),
	)
}

// initResponseUseCase creates the ingestion use case with all its dependencies.
func (c *Container) initResponseUseCase() (surveyUseCase.ResponseUseCase, error) {
	keyRepository, err := c.SurveyKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get survey key repository for response use case: %w", err)
	}

	responseRepository, err := c.SurveyResponseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get survey response repository for response use case: %w", err)
	}

	keyWrapper, err := c.KeyWrapper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key wrapper for response use case: %w", err)
	}

	baseUseCase := surveyUseCase.NewResponseUseCase(
		keyRepository,
		keyWrapper,
		c.PayloadFetcher(),
		c.Decryptor(),
		responseRepository,
		c.config.Location(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for response use case: %w", err)
		}
		return surveyUseCase.NewResponseUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initSurveyKeyUseCase creates the survey key use case with all its dependencies.
func (c *Container) initSurveyKeyUseCase() (surveyUseCase.SurveyKeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for survey key use case: %w", err)
	}

	keyRepository, err := c.SurveyKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get survey key repository for survey key use case: %w", err)
	}

	keyWrapper, err := c.KeyWrapper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key wrapper for survey key use case: %w", err)
	}

	return surveyUseCase.NewSurveyKeyUseCase(txManager, keyRepository, keyWrapper, c.Logger()), nil
}

// initWebhookHandler creates the webhook handler.
func (c *Container) initWebhookHandler() (*surveyHTTP.WebhookHandler, error) {
	responseUseCase, err := c.ResponseUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get response use case for webhook handler: %w", err)
	}

	return surveyHTTP.NewWebhookHandler(responseUseCase, c.Logger()), nil
}
