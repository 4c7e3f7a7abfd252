// Package administrator manages the program's administrator records. A
// record is a thin local row pointing at a person owned by the external
// user module; everything personal lives upstream and is merged into
// responses on read.
package administrator

import (
	"time"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Administrator links the management role to an external person. Rows are
// never deleted; Active false retires them.
type Administrator struct {
	ID           domain.AdministratorID
	ExternalRef  domain.ExternalRef
	Position     string
	Active       bool
	RegisteredAt time.Time
}

// View is the caller-facing shape: the local record plus a best-effort
// snapshot of the person. A null persona means the user module could not
// serve the snapshot, not that the administrator is gone.
type View struct {
	Record Record         `json:"administrador"`
	Person person.Payload `json:"persona"`
}

// Record is the wire form of the local row.
type Record struct {
	ID          int64  `json:"id"`
	ExternalRef string `json:"persona_external"`
	Position    string `json:"cargo"`
	Active      bool   `json:"estado"`
}

func (a Administrator) view(snapshot person.Payload) View {
	return View{
		Record: Record{
			ID:          int64(a.ID),
			ExternalRef: a.ExternalRef.String(),
			Position:    a.Position,
			Active:      a.Active,
		},
		Person: snapshot,
	}
}
