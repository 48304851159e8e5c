package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SurveyKey holds the AES key material SurveyCake uses for one survey.
// HashKey and IVKey are the raw strings from the SurveyCake console, or their
// KMS-wrapped form when a KMS key is configured.
type SurveyKey struct {
	ID         uuid.UUID
	SurveyID   string
	HashKey    string
	IVKey      string
	SurveyName string
	IsActive   bool
	CreatedAt  time.Time
}

// Validate checks the plaintext key material sizes accepted by AES-CBC.
func (k *SurveyKey) Validate() error {
	if k.SurveyID == "" {
		return errors.New("survey id cannot be empty")
	}
	if len(k.SurveyID) > MaxSurveyIDLength {
		return fmt.Errorf("survey id exceeds maximum length of %d", MaxSurveyIDLength)
	}
	switch len(k.HashKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("hash key must be 16, 24 or 32 bytes, got %d", len(k.HashKey))
	}
	if len(k.IVKey) != BlockSize {
		return fmt.Errorf("iv key must be %d bytes, got %d", BlockSize, len(k.IVKey))
	}
	return nil
}
