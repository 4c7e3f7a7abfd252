package handler

import (
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

type enrollRequest struct {
	Persona    person.Payload    `json:"persona"`
	Athlete    athlete.Fields    `json:"atleta"`
	Enrollment enrollment.Fields `json:"inscripcion"`
}

func (r *enrollRequest) Validate() error {
	if len(r.Persona) == 0 {
		return dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	return nil
}

// updateRequest allows partial updates across all three blocks; an absent
// persona skips the upstream push entirely.
type updateRequest struct {
	Persona    person.Payload    `json:"persona"`
	Athlete    athlete.Fields    `json:"atleta"`
	Enrollment enrollment.Fields `json:"inscripcion"`
}

func (r *updateRequest) Validate() error {
	if len(r.Persona) == 0 && r.Athlete.IsZero() && r.Enrollment.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}
