// Package domain holds the typed identifiers shared across bounded contexts.
// Parsing happens once at trust boundaries (HTTP params, upstream payloads);
// everything past the boundary works with typed values.
package domain

import (
	"strconv"

	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

// Local record identifiers. Distinct types keep an athlete id from ever being
// passed where an enrollment id belongs.
type (
	AdministratorID    int64
	CoachID            int64
	StudentVolunteerID int64
	AthleteID          int64
	EnrollmentID       int64
)

func (id AdministratorID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id CoachID) String() string            { return strconv.FormatInt(int64(id), 10) }
func (id StudentVolunteerID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id AthleteID) String() string          { return strconv.FormatInt(int64(id), 10) }
func (id EnrollmentID) String() string       { return strconv.FormatInt(int64(id), 10) }

// parseRecordID enforces the shared invariant: ids are positive decimal integers.
func parseRecordID(raw string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a decimal integer")
	}
	if value <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be positive")
	}
	return value, nil
}

// ParseAdministratorID parses an administrator id from its string form.
func ParseAdministratorID(raw string) (AdministratorID, error) {
	value, err := parseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return AdministratorID(value), nil
}

// ParseCoachID parses a coach id from its string form.
func ParseCoachID(raw string) (CoachID, error) {
	value, err := parseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return CoachID(value), nil
}

// ParseStudentVolunteerID parses a volunteer-student id from its string form.
func ParseStudentVolunteerID(raw string) (StudentVolunteerID, error) {
	value, err := parseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return StudentVolunteerID(value), nil
}

// ParseAthleteID parses an athlete id from its string form.
func ParseAthleteID(raw string) (AthleteID, error) {
	value, err := parseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return AthleteID(value), nil
}

// ParseEnrollmentID parses an enrollment id from its string form.
func ParseEnrollmentID(raw string) (EnrollmentID, error) {
	value, err := parseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return EnrollmentID(value), nil
}
