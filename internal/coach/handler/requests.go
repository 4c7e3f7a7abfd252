package handler

import (
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

type createRequest struct {
	Persona      person.Payload `json:"persona"`
	Specialty    string         `json:"especialidad"`
	AssignedClub string         `json:"club_asignado"`
}

func (r *createRequest) Validate() error {
	if len(r.Persona) == 0 {
		return dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	return nil
}

// updateRequest allows partial updates: absent fields keep their stored
// values and an absent persona skips the upstream push entirely.
type updateRequest struct {
	Persona      person.Payload `json:"persona"`
	Specialty    *string        `json:"especialidad"`
	AssignedClub *string        `json:"club_asignado"`
}

func (r *updateRequest) Validate() error { return nil }
