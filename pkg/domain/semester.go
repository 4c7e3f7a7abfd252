package domain

import (
	"strconv"
	"strings"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

// Semester is a volunteer student's academic semester, 1 through 10.
type Semester int16

// ParseSemester accepts the spellings students actually type: a bare number
// or one with an ordinal suffix ("3°", "5to", "8vo", "10mo"). Anything that
// does not normalize to 1..10 is rejected.
func ParseSemester(raw string) (Semester, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "semester is required")
	}

	normalized := strings.ToLower(trimmed)
	for _, suffix := range []string{"°", "ro", "do", "to", "vo", "no", "mo"} {
		normalized = strings.TrimSuffix(normalized, suffix)
	}
	normalized = strings.TrimSpace(normalized)

	value, err := strconv.Atoi(normalized)
	if err != nil || value < 1 || value > 10 {
		return 0, dErrors.New(dErrors.CodeValidation, "semester must be between 1 and 10")
	}
	return Semester(value), nil
}

func (s Semester) Int16() int16 { return int16(s) }
