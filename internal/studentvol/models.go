// Package studentvol manages volunteer student records, the outreach
// students assigned to the program by career and semester. Identity lives
// in the external user module; the local row carries the academic
// placement and the link.
package studentvol

import (
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

type StudentVolunteer struct {
	ID           domain.StudentVolunteerID
	ExternalRef  domain.ExternalRef
	Career       string
	Semester     int16
	Active       bool
	RegisteredAt time.Time
}

// Record is the wire shape of the local row. Field names follow the
// estudiante_vinculacion table so existing clients keep working.
type Record struct {
	ID          int64  `json:"id"`
	ExternalRef string `json:"persona_external"`
	Career      string `json:"carrera"`
	Semester    int16  `json:"semestre"`
	Active      bool   `json:"estado"`
}

// View pairs the local row with the person snapshot fetched from the user
// module. Person is null when the snapshot could not be fetched.
type View struct {
	Record Record         `json:"estudiante"`
	Person person.Payload `json:"persona"`
}

// Page is one page of a listing.
type Page struct {
	Items      []View `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

func (v StudentVolunteer) view(snapshot person.Payload) View {
	return View{
		Record: Record{
			ID:          int64(v.ID),
			ExternalRef: v.ExternalRef.String(),
			Career:      v.Career,
			Semester:    v.Semester,
			Active:      v.Active,
		},
		Person: snapshot,
	}
}
