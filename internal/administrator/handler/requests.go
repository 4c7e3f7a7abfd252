package handler

import (
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
)

// createRequest carries the person block plus the administrator's own
// fields. Person field semantics are validated by the service; the handler
// only rejects bodies with no person block at all.
type createRequest struct {
	Persona  person.Payload `json:"persona"`
	Position string         `json:"cargo"`
}

func (r *createRequest) Validate() error {
	if len(r.Persona) == 0 {
		return dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	return nil
}

// updateRequest mirrors createRequest; a nil cargo keeps the stored value.
type updateRequest struct {
	Persona  person.Payload `json:"persona"`
	Position *string        `json:"cargo"`
}

func (r *updateRequest) Validate() error {
	if len(r.Persona) == 0 {
		return dErrors.New(dErrors.CodeValidation, "persona data is required")
	}
	return nil
}
