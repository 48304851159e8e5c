// Package mocks provides mock implementations of the survey repositories.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// MockSurveyKeyRepository is a mock implementation of SurveyKeyRepository.
type MockSurveyKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of SurveyKeyRepository.
func (m *MockSurveyKeyRepository) Create(ctx context.Context, key *surveyDomain.SurveyKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetActiveBySurveyID mocks the GetActiveBySurveyID method of SurveyKeyRepository.
func (m *MockSurveyKeyRepository) GetActiveBySurveyID(
	ctx context.Context,
	surveyID string,
) (*surveyDomain.SurveyKey, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surveyDomain.SurveyKey), args.Error(1)
}

// DeactivateBySurveyID mocks the DeactivateBySurveyID method of SurveyKeyRepository.
func (m *MockSurveyKeyRepository) DeactivateBySurveyID(ctx context.Context, surveyID string) error {
	args := m.Called(ctx, surveyID)
	return args.Error(0)
}

// MockSurveyResponseRepository is a mock implementation of SurveyResponseRepository.
type MockSurveyResponseRepository struct {
	mock.Mock
}

// Upsert mocks the Upsert method of SurveyResponseRepository.
func (m *MockSurveyResponseRepository) Upsert(ctx context.Context, response *surveyDomain.SurveyResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

// GetByResponseHash mocks the GetByResponseHash method of SurveyResponseRepository.
func (m *MockSurveyResponseRepository) GetByResponseHash(
	ctx context.Context,
	responseHash string,
) (*surveyDomain.SurveyResponse, error) {
	args := m.Called(ctx, responseHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*surveyDomain.SurveyResponse), args.Error(1)
}

// Ping mocks the Ping method of SurveyResponseRepository.
func (m *MockSurveyResponseRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
