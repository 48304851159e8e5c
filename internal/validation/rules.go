// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/surveyhook/internal/errors"
)

var (
	// urlSafeRegex matches RFC 3986 unreserved characters.
	urlSafeRegex = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// URLSafe validates that a string can be used as a single URL path segment.
var URLSafe = validation.NewStringRuleWithError(
	func(s string) bool {
		return urlSafeRegex.MatchString(s) && s != "." && s != ".."
	},
	validation.NewError("validation_url_safe", "must contain only letters, digits, '-', '_', '.' or '~'"),
)

// AESKey validates that a string is a 16, 24 or 32 byte AES key.
var AESKey = validation.NewStringRuleWithError(
	func(s string) bool {
		switch len(s) {
		case 16, 24, 32:
			return true
		}
		return false
	},
	validation.NewError("validation_aes_key", "must be 16, 24 or 32 bytes long"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
