package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/allisson/surveyhook/internal/survey/domain"
)

// CBCDecryptor decrypts SurveyCake payloads: AES-CBC with the survey's hash key
// and IV taken as raw bytes, and zero-byte padding instead of PKCS#7.
type CBCDecryptor struct {
	logger *slog.Logger
}

// NewCBCDecryptor creates a CBCDecryptor.
func NewCBCDecryptor(logger *slog.Logger) *CBCDecryptor {
	return &CBCDecryptor{logger: logger}
}

// Decrypt decodes, decrypts and parses ciphertextB64. When the plaintext has
// trailing bytes after the JSON object, the first balanced object is used.
func (d *CBCDecryptor) Decrypt(ciphertextB64, hashKey, ivKey string) (domain.DecryptedResponse, error) {
	plaintext, err := decryptCBC(ciphertextB64, []byte(hashKey), []byte(ivKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}

	data, err := parseObject(plaintext)
	if err == nil {
		return data, nil
	}

	object, ok := ExtractFirstJSONObject(plaintext)
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}

	d.logger.Warn("decrypted payload is not clean JSON, using first complete object",
		slog.Any("error", err),
		slog.Int("plaintext_length", len(plaintext)),
		slog.Int("object_length", len(object)),
	)

	data, err = parseObject(object)
	if err != nil {
		return nil, fmt.Errorf("%w: recovered object: %v", domain.ErrDecryptionFailed, err)
	}

	return data, nil
}

// decryptCBC returns the trimmed UTF-8 plaintext of a Base64 AES-CBC ciphertext.
func decryptCBC(ciphertextB64 string, key, iv []byte) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertextB64))
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a positive multiple of %d", len(ciphertext), aes.BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("invalid key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("invalid iv length %d", len(iv))
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	plain = bytes.TrimRight(plain, "\x00")

	if !utf8.Valid(plain) {
		return "", errors.New("plaintext is not valid UTF-8")
	}

	return strings.TrimSpace(string(plain)), nil
}

// parseObject parses text as exactly one JSON object.
func parseObject(text string) (domain.DecryptedResponse, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var data domain.DecryptedResponse
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	if data == nil {
		return nil, errors.New("payload is not a JSON object")
	}

	return data, nil
}
