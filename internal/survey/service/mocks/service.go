// Package mocks provides mock implementations of the survey service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
)

// MockPayloadFetcher is a mock implementation of PayloadFetcher.
type MockPayloadFetcher struct {
	mock.Mock
}

// Fetch mocks the Fetch method of PayloadFetcher.
func (m *MockPayloadFetcher) Fetch(ctx context.Context, surveyID, responseHash string) (string, error) {
	args := m.Called(ctx, surveyID, responseHash)
	return args.String(0), args.Error(1)
}

// MockDecryptor is a mock implementation of Decryptor.
type MockDecryptor struct {
	mock.Mock
}

// Decrypt mocks the Decrypt method of Decryptor.
func (m *MockDecryptor) Decrypt(ciphertextB64, hashKey, ivKey string) (surveyDomain.DecryptedResponse, error) {
	args := m.Called(ciphertextB64, hashKey, ivKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(surveyDomain.DecryptedResponse), args.Error(1)
}

// MockKeyWrapper is a mock implementation of KeyWrapper.
type MockKeyWrapper struct {
	mock.Mock
}

// Wrap mocks the Wrap method of KeyWrapper.
func (m *MockKeyWrapper) Wrap(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

// Unwrap mocks the Unwrap method of KeyWrapper.
func (m *MockKeyWrapper) Unwrap(ctx context.Context, stored string) (string, error) {
	args := m.Called(ctx, stored)
	return args.String(0), args.Error(1)
}
