// Package coach manages coach records. Identity lives in the external user
// module; the local row carries only the coaching assignment and the link.
package coach

import (
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Coach is the local row. Soft-deleted rows stay in place with Active false
// and can be brought back through Reactivate.
type Coach struct {
	ID           domain.CoachID
	ExternalRef  domain.ExternalRef
	Specialty    string
	AssignedClub string
	Active       bool
	RegisteredAt time.Time
}

// View pairs the local record with a best-effort person snapshot. Persona is
// null whenever the user module could not serve it.
type View struct {
	Record Record         `json:"entrenador"`
	Person person.Payload `json:"persona"`
}

type Record struct {
	ID           int64  `json:"id"`
	ExternalRef  string `json:"persona_external"`
	Specialty    string `json:"especialidad"`
	AssignedClub string `json:"club_asignado"`
	Active       bool   `json:"estado"`
}

func (c Coach) view(snapshot person.Payload) View {
	return View{
		Record: Record{
			ID:           int64(c.ID),
			ExternalRef:  c.ExternalRef.String(),
			Specialty:    c.Specialty,
			AssignedClub: c.AssignedClub,
			Active:       c.Active,
		},
		Person: snapshot,
	}
}
