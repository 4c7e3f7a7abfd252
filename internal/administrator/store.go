package administrator

import (
	"context"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Store persists administrator records. Implementations report factual
// failures through sentinel errors (sentinel.ErrNotFound for missing rows,
// sentinel.ErrConflict for an external reference already claimed); the
// service translates those into caller-facing errors.
type Store interface {
	Create(ctx context.Context, rec Administrator) (Administrator, error)
	Update(ctx context.Context, rec Administrator) (Administrator, error)
	GetByID(ctx context.Context, id domain.AdministratorID) (Administrator, error)
	GetByExternalRef(ctx context.Context, ref domain.ExternalRef) (Administrator, error)
	// ExistsActiveByExternalRef reports whether an active record other than
	// excludeID already claims the reference. Zero excludeID excludes nothing.
	ExistsActiveByExternalRef(ctx context.Context, ref domain.ExternalRef, excludeID domain.AdministratorID) (bool, error)
	ListActive(ctx context.Context) ([]Administrator, error)
	SetActive(ctx context.Context, id domain.AdministratorID, active bool) error
}
