// Package service implements the survey platform collaborators of the ingestion
// pipeline: the SurveyCake API client, the AES-CBC payload decryptor and the
// optional KMS wrapping of stored survey keys.
package service

import (
	"context"

	"github.com/allisson/surveyhook/internal/survey/domain"
)

// PayloadFetcher retrieves the encrypted payload of one survey response.
type PayloadFetcher interface {
	// Fetch returns the raw Base64 ciphertext for the response, or an error
	// wrapping domain.ErrFetchExhausted or domain.ErrRemoteRejected.
	Fetch(ctx context.Context, surveyID, responseHash string) (string, error)
}

// Decryptor turns a SurveyCake ciphertext into a decoded response.
type Decryptor interface {
	// Decrypt returns an error wrapping domain.ErrDecryptionFailed on any failure.
	Decrypt(ciphertextB64, hashKey, ivKey string) (domain.DecryptedResponse, error)
}

// KeyWrapper converts survey key material between its stored and usable forms.
type KeyWrapper interface {
	Wrap(ctx context.Context, plaintext string) (string, error)
	Unwrap(ctx context.Context, stored string) (string, error)
}

// KMSKeeper is the subset of *secrets.Keeper used for key wrapping.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
