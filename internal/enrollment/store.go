package enrollment

import (
	"context"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Store persists enrollment rows. Implementations speak sentinel errors;
// sentinel.ErrConflict covers the one-enrollment-per-athlete unique index.
// Write methods honor a transaction carried in ctx so they can pair with
// athlete writes.
type Store interface {
	Create(ctx context.Context, rec Enrollment) (Enrollment, error)
	Update(ctx context.Context, rec Enrollment) (Enrollment, error)
	GetByID(ctx context.Context, id domain.EnrollmentID) (Enrollment, error)
	GetByAthleteID(ctx context.Context, athleteID domain.AthleteID) (Enrollment, error)
	// List returns every enrollment, disabled ones included. The roster
	// view needs both.
	List(ctx context.Context) ([]Enrollment, error)
	SetEnabled(ctx context.Context, id domain.EnrollmentID, enabled bool) error
}
