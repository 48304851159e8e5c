// Package mocks provides mock implementations of the survey use cases for testing
// HTTP handlers and CLI commands.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyUseCase "github.com/allisson/surveyhook/internal/survey/usecase"
)

// MockResponseUseCase is a mock implementation of ResponseUseCase for testing.
type MockResponseUseCase struct {
	mock.Mock
}

// Ingest mocks the Ingest method of ResponseUseCase.
func (m *MockResponseUseCase) Ingest(
	ctx context.Context,
	surveyID, responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	args := m.Called(ctx, surveyID, responseHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surveyDomain.SurveyResponse), args.Error(1)
}

// IngestWithKeys mocks the IngestWithKeys method of ResponseUseCase.
func (m *MockResponseUseCase) IngestWithKeys(
	ctx context.Context,
	surveyID, responseHash, hashKey, ivKey string,
) (*surveyDomain.SurveyResponse, error) {
	args := m.Called(ctx, surveyID, responseHash, hashKey, ivKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surveyDomain.SurveyResponse), args.Error(1)
}

// MockHealthChecker is a mock implementation of HealthChecker for testing.
type MockHealthChecker struct {
	mock.Mock
}

// Ping mocks the Ping method of HealthChecker.
func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSurveyKeyUseCase is a mock implementation of SurveyKeyUseCase for testing.
type MockSurveyKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method of SurveyKeyUseCase.
func (m *MockSurveyKeyUseCase) Create(
	ctx context.Context,
	input *surveyUseCase.CreateSurveyKeyInput,
) (*surveyDomain.SurveyKey, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surveyDomain.SurveyKey), args.Error(1)
}

// Import mocks the Import method of SurveyKeyUseCase.
func (m *MockSurveyKeyUseCase) Import(
	ctx context.Context,
	inputs []*surveyUseCase.CreateSurveyKeyInput,
) ([]*surveyDomain.SurveyKey, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*surveyDomain.SurveyKey), args.Error(1)
}
