// Package enrollment pairs each athlete with their single enrollment row
// and owns the one write path that must survive a dead user module. Where
// the staff registrars refuse to proceed without a real external reference,
// enrollment provisions credentials, accepts synthetic references and
// reconciles them later.
package enrollment

import (
	"strings"
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

const (
	dateLayout = "2006-01-02"

	// defaultType is the enrollment category used when the caller names
	// none. MAYOR_EDAD is the usual override for adult athletes.
	defaultType = "ORDINARIA"
)

// Enrollment is the local row. One per athlete; habilitada is the only
// mutable state and toggling it is the only transition.
type Enrollment struct {
	ID         domain.EnrollmentID
	AthleteID  domain.AthleteID
	EnrolledOn time.Time
	Type       string
	CreatedAt  time.Time
	Enabled    bool
}

// Fields is the enrollment-specific input block (inscripcion in request
// bodies). habilitada is deliberately absent: state changes go through
// the toggle operation only.
type Fields struct {
	EnrolledOn string `json:"fecha_inscripcion"`
	Type       string `json:"tipo_inscripcion"`
}

// IsZero reports whether no field was provided.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// apply merges the provided fields onto the row, empty values meaning "not
// provided" as everywhere else.
func (f Fields) apply(rec *Enrollment) error {
	if f.EnrolledOn != "" {
		enrolledOn, err := time.Parse(dateLayout, strings.TrimSpace(f.EnrolledOn))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "enrollment date must use format YYYY-MM-DD")
		}
		rec.EnrolledOn = enrolledOn
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		rec.Type = t
	}
	return nil
}

// Record is the JSON shape of an enrollment row.
type Record struct {
	ID         int64     `json:"id"`
	EnrolledOn string    `json:"fecha_inscripcion"`
	Type       string    `json:"tipo_inscripcion"`
	CreatedAt  time.Time `json:"fecha_creacion"`
	Enabled    bool      `json:"habilitada"`
}

func (e Enrollment) record() Record {
	return Record{
		ID:         int64(e.ID),
		EnrolledOn: e.EnrolledOn.Format(dateLayout),
		Type:       e.Type,
		CreatedAt:  e.CreatedAt,
		Enabled:    e.Enabled,
	}
}

// View is the full enrollment response: the merged athlete, the enrollment
// row and the raw person snapshot (null when the user module is degraded or
// the reference is synthetic).
type View struct {
	Athlete    athlete.Record `json:"atleta"`
	Enrollment Record         `json:"inscripcion"`
	Person     person.Payload `json:"persona"`
}

func makeView(ath athlete.Athlete, enr Enrollment, snapshot person.Payload) View {
	return View{
		Athlete:    ath.Merged(snapshot),
		Enrollment: enr.record(),
		Person:     snapshot,
	}
}
