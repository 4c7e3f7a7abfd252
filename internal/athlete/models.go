// Package athlete keeps the program's athlete records. Unlike the staff
// roles, an athlete row carries a local copy of the identity fields next to
// the sporting and guardian data, so rosters stay readable while the user
// module is down. Enrollment owns all writes; this package owns the rows
// and the read views.
package athlete

import (
	"strings"
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/merge"
	dErrors "github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain-errors"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/email"
)

const birthDateLayout = "2006-01-02"

// Athlete is the local row. ExternalRef may be synthetic when the athlete
// was enrolled while the user module was degraded; the identity copy is what
// keeps such rows usable.
type Athlete struct {
	ID          domain.AthleteID
	ExternalRef domain.ExternalRef

	FirstName  string
	LastName   string
	NationalID domain.NationalID
	Email      string
	Phone      string
	Address    string
	Gender     string
	BirthDate  *time.Time
	Age        int16

	BloodType   string
	Allergies   string
	Illnesses   string
	Medications string
	Injuries    string

	GuardianName         string
	GuardianNationalID   string
	GuardianRelationship string
	GuardianPhone        string
	GuardianEmail        string
	GuardianAddress      string
	GuardianOccupation   string

	Active       bool
	RegisteredAt time.Time
}

// Fields is the athlete-specific input block (atleta in request bodies).
// Empty values mean "not provided": applying Fields never blanks a stored
// value, so partial updates are safe against the identity copy.
type Fields struct {
	FirstName  string `json:"nombre"`
	LastName   string `json:"apellido"`
	NationalID string `json:"cedula"`
	Email      string `json:"email"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
	Gender     string `json:"sexo"`
	BirthDate  string `json:"fecha_nacimiento"`
	Age        int16  `json:"edad"`

	BloodType   string `json:"tipo_sangre"`
	Allergies   string `json:"alergias"`
	Illnesses   string `json:"enfermedades"`
	Medications string `json:"medicamentos"`
	Injuries    string `json:"lesiones"`

	GuardianName         string `json:"nombre_representante"`
	GuardianNationalID   string `json:"cedula_representante"`
	GuardianRelationship string `json:"parentesco_representante"`
	GuardianPhone        string `json:"telefono_representante"`
	GuardianEmail        string `json:"correo_representante"`
	GuardianAddress      string `json:"direccion_representante"`
	GuardianOccupation   string `json:"ocupacion_representante"`
}

// IsZero reports whether no field was provided at all.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// ParseBirthDate parses the wire form of fecha_nacimiento.
func ParseBirthDate(raw string) (time.Time, error) {
	t, err := time.Parse(birthDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "birth date must use format YYYY-MM-DD")
	}
	return t, nil
}

// Apply merges the provided fields onto the row. Non-empty incoming values
// win; everything absent keeps its stored value. A national id arriving here
// is re-validated since the row's cedula backs the duplicate pre-check.
func (a *Athlete) Apply(f Fields) error {
	if raw := strings.TrimSpace(f.NationalID); raw != "" {
		nationalID, err := domain.ParseDNI(raw)
		if err != nil {
			return err
		}
		a.NationalID = nationalID
	}
	if f.BirthDate != "" {
		birthDate, err := ParseBirthDate(f.BirthDate)
		if err != nil {
			return err
		}
		a.BirthDate = &birthDate
	}
	if f.Age > 0 {
		a.Age = f.Age
	}
	if addr := email.Normalize(f.Email); addr != "" {
		a.Email = addr
	}

	a.FirstName = override(a.FirstName, f.FirstName)
	a.LastName = override(a.LastName, f.LastName)
	a.Phone = override(a.Phone, f.Phone)
	a.Address = override(a.Address, f.Address)
	a.Gender = override(a.Gender, f.Gender)
	a.BloodType = override(a.BloodType, f.BloodType)
	a.Allergies = override(a.Allergies, f.Allergies)
	a.Illnesses = override(a.Illnesses, f.Illnesses)
	a.Medications = override(a.Medications, f.Medications)
	a.Injuries = override(a.Injuries, f.Injuries)
	a.GuardianName = override(a.GuardianName, f.GuardianName)
	a.GuardianNationalID = override(a.GuardianNationalID, f.GuardianNationalID)
	a.GuardianRelationship = override(a.GuardianRelationship, f.GuardianRelationship)
	a.GuardianPhone = override(a.GuardianPhone, f.GuardianPhone)
	a.GuardianEmail = override(a.GuardianEmail, f.GuardianEmail)
	a.GuardianAddress = override(a.GuardianAddress, f.GuardianAddress)
	a.GuardianOccupation = override(a.GuardianOccupation, f.GuardianOccupation)
	return nil
}

// MergeIdentity copies whatever identity fields the payload carries onto the
// local copy, same overwrite rule as Apply. The cedula is left alone here;
// enrollment validates and sets it explicitly.
func (a *Athlete) MergeIdentity(p person.Payload) {
	if len(p) == 0 {
		return
	}
	a.FirstName = override(a.FirstName, p.FirstName())
	a.LastName = override(a.LastName, p.LastName())
	a.Phone = override(a.Phone, p.Phone())
	a.Address = override(a.Address, p.Address())
	a.Gender = override(a.Gender, p.Gender())
	if addr := email.Normalize(p.Email()); addr != "" {
		a.Email = addr
	}
}

func override(stored, incoming string) string {
	if trimmed := strings.TrimSpace(incoming); trimmed != "" {
		return trimmed
	}
	return stored
}

// Record is the JSON shape of an athlete row.
type Record struct {
	ID          int64  `json:"id"`
	ExternalRef string `json:"persona_external"`

	FirstName  string  `json:"nombre"`
	LastName   string  `json:"apellido"`
	NationalID string  `json:"cedula"`
	Email      string  `json:"email"`
	Phone      string  `json:"telefono"`
	Address    string  `json:"direccion"`
	Gender     string  `json:"sexo"`
	BirthDate  *string `json:"fecha_nacimiento"`
	Age        int16   `json:"edad"`

	BloodType   string `json:"tipo_sangre"`
	Allergies   string `json:"alergias"`
	Illnesses   string `json:"enfermedades"`
	Medications string `json:"medicamentos"`
	Injuries    string `json:"lesiones"`

	GuardianName         string `json:"nombre_representante"`
	GuardianNationalID   string `json:"cedula_representante"`
	GuardianRelationship string `json:"parentesco_representante"`
	GuardianPhone        string `json:"telefono_representante"`
	GuardianEmail        string `json:"correo_representante"`
	GuardianAddress      string `json:"direccion_representante"`
	GuardianOccupation   string `json:"ocupacion_representante"`

	Active bool `json:"estado"`
}

// View pairs the merged athlete record with the raw person snapshot.
// Persona is null whenever the user module could not serve it; the merged
// record already carries everything the roster needs in that case.
type View struct {
	Record Record         `json:"atleta"`
	Person person.Payload `json:"persona"`
}

// Merged builds the caller-facing record: the local copy wins wherever it is
// non-empty and the snapshot only fills gaps.
func (a Athlete) Merged(snapshot person.Payload) Record {
	rec := Record{
		ID:          int64(a.ID),
		ExternalRef: a.ExternalRef.String(),

		FirstName:  a.FirstName,
		LastName:   a.LastName,
		NationalID: string(a.NationalID),
		Email:      a.Email,
		Phone:      a.Phone,
		Address:    a.Address,
		Gender:     a.Gender,
		BirthDate:  formatBirthDate(a.BirthDate),
		Age:        a.Age,

		BloodType:   a.BloodType,
		Allergies:   a.Allergies,
		Illnesses:   a.Illnesses,
		Medications: a.Medications,
		Injuries:    a.Injuries,

		GuardianName:         a.GuardianName,
		GuardianNationalID:   a.GuardianNationalID,
		GuardianRelationship: a.GuardianRelationship,
		GuardianPhone:        a.GuardianPhone,
		GuardianEmail:        a.GuardianEmail,
		GuardianAddress:      a.GuardianAddress,
		GuardianOccupation:   a.GuardianOccupation,

		Active: a.Active,
	}
	if len(snapshot) == 0 {
		return rec
	}
	rec.FirstName = merge.String(rec.FirstName, snapshot.FirstName())
	rec.LastName = merge.String(rec.LastName, snapshot.LastName())
	rec.NationalID = merge.String(rec.NationalID, snapshot.Identification())
	rec.Email = merge.String(rec.Email, snapshot.Email())
	rec.Phone = merge.String(rec.Phone, snapshot.Phone())
	rec.Address = merge.String(rec.Address, snapshot.Address())
	rec.Gender = merge.String(rec.Gender, snapshot.Gender())
	return rec
}

func (a Athlete) view(snapshot person.Payload) View {
	return View{Record: a.Merged(snapshot), Person: snapshot}
}

func formatBirthDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(birthDateLayout)
	return &s
}
