package coach

import (
	"context"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Store persists coach records. Implementations speak sentinel errors
// (sentinel.ErrNotFound, sentinel.ErrConflict for a claimed external
// reference); the service translates them for callers.
type Store interface {
	Create(ctx context.Context, rec Coach) (Coach, error)
	Update(ctx context.Context, rec Coach) (Coach, error)
	GetByID(ctx context.Context, id domain.CoachID) (Coach, error)
	GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Coach, error)
	// ExistsActiveByExternalRef reports whether an active record other than
	// excludeID already claims the reference. Zero excludeID excludes nothing.
	ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.CoachID) (bool, error)
	ListActive(ctx context.Context) ([]Coach, error)
	SetActive(ctx context.Context, id domain.CoachID, active bool) error
}
