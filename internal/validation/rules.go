// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/idcore/internal/errors"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength validates a master password candidate.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Validate checks if the password meets the configured requirements
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(p.MinLength)+" characters",
		)
	}
	if p.RequireUpper && !strings.ContainsFunc(s, unicode.IsUpper) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}
	if p.RequireLower && !strings.ContainsFunc(s, unicode.IsLower) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}
	if p.RequireNumber && !strings.ContainsFunc(s, unicode.IsNumber) {
		return validation.NewError("validation_password_number", "password must contain at least one number")
	}
	if p.RequireSpecial && !strings.ContainsFunc(s, isSpecial) {
		return validation.NewError(
			"validation_password_special",
			"password must contain at least one special character",
		)
	}

	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Identifier validates short machine names such as credential names.
var Identifier = validation.NewStringRuleWithError(
	identifierRegex.MatchString,
	validation.NewError(
		"validation_identifier",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-' (max 64)",
	),
)

// HTTPSURL validates an absolute https URL, e.g. a published key set location.
var HTTPSURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme == "https" && u.Host != ""
	},
	validation.NewError("validation_https_url", "must be an absolute https URL"),
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

// NotNilUUID rejects the zero UUID.
var NotNilUUID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_nil", "must not be empty")
	}
	return nil
})
