package domain

import (
	"strings"
	"unicode"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

// NationalID is the person's identification number as supplied by callers.
// The external person service treats it as the natural lookup key.
type NationalID string

const maxNationalIDLen = 20

// ParseNationalID applies the lenient boundary rules shared by every role:
// non-empty after trimming, bounded length, no whitespace or control
// characters. Role-specific formats (e.g. the ten-digit DNI rule) layer on
// top via ParseDNI.
func ParseNationalID(raw string) (NationalID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identification must not be empty")
	}
	if len(trimmed) > maxNationalIDLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identification is too long")
	}
	for _, r := range trimmed {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identification contains invalid characters")
		}
	}
	return NationalID(trimmed), nil
}

// ParseDNI enforces the institutional format used by coaches and volunteer
// students: exactly ten numeric digits.
func ParseDNI(raw string) (NationalID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeValidation, "identification is required")
	}
	if len(trimmed) != 10 {
		return "", dErrors.New(dErrors.CodeValidation, "identification must have exactly 10 digits")
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeValidation, "identification must be numeric")
		}
	}
	return NationalID(trimmed), nil
}

func (n NationalID) String() string { return string(n) }

// IsZero reports whether the identification is unset.
func (n NationalID) IsZero() bool { return n == "" }
