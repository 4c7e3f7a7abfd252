package person

import (
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/domain"
)

// Candidate key tables. The user module and its clients disagree on field
// names, so every logical field is resolved through an ordered list of
// spellings. Keep these tables explicit; business logic never probes keys
// directly.
var (
	// RefKeys are the spellings under which the user module returns a
	// person's external identifier, in priority order.
	RefKeys = []string{"external", "external_id", "external_person", "uuid", "id"}

	IdentificationKeys = []string{"identification", "dni", "cedula", "identificacion"}
	FirstNameKeys      = []string{"first_name", "nombre", "name"}
	LastNameKeys       = []string{"last_name", "apellido"}
	EmailKeys          = []string{"email", "correo"}
	PasswordKeys       = []string{"password", "clave"}
	// "phono" is the user module's own spelling, so it goes first.
	PhoneKeys   = []string{"phono", "phone", "telefono", "celular"}
	GenderKeys  = []string{"gender", "sexo"}
	AddressKeys = []string{"direction", "address", "direccion"}
)

// FirstPresent returns the value of the first candidate key that holds a
// non-empty scalar, rendered as a string.
func FirstPresent(payload map[string]any, keys []string) (string, bool) {
	if payload == nil {
		return "", false
	}
	for _, key := range keys {
		raw, ok := payload[key]
		if !ok || raw == nil {
			continue
		}
		if s, ok := stringify(raw); ok {
			return s, true
		}
	}
	return "", false
}

// ExtractRef pulls an external identifier out of a response body, checking
// the nested data object before the top level. Returns false when no
// candidate key holds a usable value.
func ExtractRef(body map[string]any) (domain.ExternalRef, bool) {
	if body == nil {
		return "", false
	}

	if data, ok := body["data"].(map[string]any); ok {
		if raw, found := FirstPresent(data, RefKeys); found {
			if ref, err := domain.ParseExternalRef(raw); err == nil {
				return ref, true
			}
		}
	}

	if raw, found := FirstPresent(body, RefKeys); found {
		if ref, err := domain.ParseExternalRef(raw); err == nil {
			return ref, true
		}
	}

	return "", false
}

// ExtractRefFromEnvelope is a convenience wrapper for normalized responses.
func ExtractRefFromEnvelope(env *Envelope) (domain.ExternalRef, bool) {
	if env == nil {
		return "", false
	}
	return ExtractRef(env.Body)
}
