package studentvol

import (
	"context"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Store persists volunteer student records. Implementations speak sentinel
// errors (sentinel.ErrNotFound, sentinel.ErrConflict for a claimed external
// reference); the service translates them for callers.
type Store interface {
	Create(ctx context.Context, rec StudentVolunteer) (StudentVolunteer, error)
	Update(ctx context.Context, rec StudentVolunteer) (StudentVolunteer, error)
	GetByID(ctx context.Context, id domain.StudentVolunteerID) (StudentVolunteer, error)
	GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (StudentVolunteer, error)
	// ExistsActiveByExternalRef reports whether an active record other than
	// excludeID already claims the reference. Zero excludeID excludes nothing.
	ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.StudentVolunteerID) (bool, error)
	ListActive(ctx context.Context) ([]StudentVolunteer, error)
	// ListActivePage returns one page of active records, newest first, along
	// with the total count of active records.
	ListActivePage(ctx context.Context, offset, limit int) ([]StudentVolunteer, int, error)
	// ListActiveByCareer returns active records whose career contains the
	// fragment, case-insensitively.
	ListActiveByCareer(ctx context.Context, career string) ([]StudentVolunteer, error)
	SetActive(ctx context.Context, id domain.StudentVolunteerID, active bool) error
}
