package handler

import (
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

type createRequest struct {
	Persona  person.Payload `json:"persona"`
	Career   string         `json:"carrera"`
	Semester string         `json:"semestre"`
}

func (r *createRequest) Validate() error {
	if len(r.Persona) == 0 {
		return dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	return nil
}

// updateRequest allows partial updates: absent fields keep their stored
// values and an absent persona skips the upstream push entirely. At least
// one field must arrive.
type updateRequest struct {
	Persona  person.Payload `json:"persona"`
	Career   *string        `json:"carrera"`
	Semester *string        `json:"semestre"`
}

func (r *updateRequest) Validate() error {
	if len(r.Persona) == 0 && r.Career == nil && r.Semester == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}
