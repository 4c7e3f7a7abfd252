package athlete

import (
	"context"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Store persists athlete rows. Implementations speak sentinel errors;
// sentinel.ErrConflict covers both unique columns (persona_external and
// cedula), the service translates for callers. Write methods honor a
// transaction carried in ctx so enrollment can pair them with enrollment
// writes.
type Store interface {
	Create(ctx context.Context, rec Athlete) (Athlete, error)
	Update(ctx context.Context, rec Athlete) (Athlete, error)
	GetByID(ctx context.Context, id domain.AthleteID) (Athlete, error)
	GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Athlete, error)
	GetByNationalID(ctx context.Context, nationalID domain.NationalID) (Athlete, error)
	ListActive(ctx context.Context) ([]Athlete, error)
	SetActive(ctx context.Context, id domain.AthleteID, active bool) error
}
