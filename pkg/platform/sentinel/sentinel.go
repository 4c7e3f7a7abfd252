// Package sentinel holds the storage-level error values shared by every
// store implementation. Stores return these (optionally wrapped) and the
// service layer translates them into coded domain errors; storage never
// speaks HTTP or domain-error codes itself.
package sentinel

import "errors"

var (
	// ErrNotFound: no row matches the lookup (id, external reference or
	// national id).
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness rule was violated, such as a second row
	// holding the same external reference or a second enrollment for one
	// athlete.
	ErrConflict = errors.New("conflict")
)
