package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// PlaintextKeyWrapper stores survey key material as-is.
type PlaintextKeyWrapper struct{}

// NewPlaintextKeyWrapper creates a PlaintextKeyWrapper.
func NewPlaintextKeyWrapper() *PlaintextKeyWrapper {
	return &PlaintextKeyWrapper{}
}

// Wrap returns plaintext unchanged.
func (PlaintextKeyWrapper) Wrap(_ context.Context, plaintext string) (string, error) {
	return plaintext, nil
}

// Unwrap returns stored unchanged.
func (PlaintextKeyWrapper) Unwrap(_ context.Context, stored string) (string, error) {
	return stored, nil
}

// KMSKeyWrapper encrypts survey key material with a KMS keeper and stores the
// ciphertext Base64 encoded.
type KMSKeyWrapper struct {
	keeper KMSKeeper
}

// NewKMSKeyWrapper creates a KMSKeyWrapper around keeper.
func NewKMSKeyWrapper(keeper KMSKeeper) *KMSKeyWrapper {
	return &KMSKeyWrapper{keeper: keeper}
}

// OpenKMSKeyWrapper opens the keeper for keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKMSKeyWrapper(ctx context.Context, keyURI string) (*KMSKeyWrapper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return NewKMSKeyWrapper(keeper), nil
}

// Wrap encrypts plaintext.
func (w *KMSKeyWrapper) Wrap(ctx context.Context, plaintext string) (string, error) {
	ciphertext, err := w.keeper.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to wrap key material: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unwrap decrypts a value produced by Wrap.
func (w *KMSKeyWrapper) Unwrap(ctx context.Context, stored string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("wrapped key material is not valid base64: %w", err)
	}

	plaintext, err := w.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to unwrap key material: %w", err)
	}
	return string(plaintext), nil
}

// Close releases the keeper.
func (w *KMSKeyWrapper) Close() error {
	return w.keeper.Close()
}
