// Package person models the boundary with the external user module, the
// system of record for personal identity. The module's response envelopes
// and field names are inconsistent across endpoints, so everything here
// works on loosely typed payloads with tolerant, ordered key lookups.
package person

import (
	"strconv"
	"strings"
)

// Envelope is the normalized user module response: an optional status
// string plus the parsed body. The data member may be an object or a
// list depending on the endpoint.
type Envelope struct {
	Status string
	Body   map[string]any
}

// NewEnvelope normalizes a parsed response body.
func NewEnvelope(body map[string]any) *Envelope {
	env := &Envelope{Body: body}
	if s, ok := body["status"].(string); ok {
		env.Status = s
	}
	return env
}

// Data returns the nested data object, or nil when absent or not an object.
func (e *Envelope) Data() Payload {
	if e == nil || e.Body == nil {
		return nil
	}
	d, _ := e.Body["data"].(map[string]any)
	return Payload(d)
}

// DataList returns the nested data member as a list of objects, or nil.
// Used by listing endpoints where data is an array.
func (e *Envelope) DataList() []Payload {
	if e == nil || e.Body == nil {
		return nil
	}
	raw, ok := e.Body["data"].([]any)
	if !ok {
		return nil
	}
	out := make([]Payload, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Payload(m))
		}
	}
	return out
}

// Message returns the body's message field when present, used for
// surfacing upstream rejection reasons.
func (e *Envelope) Message() string {
	if e == nil || e.Body == nil {
		return ""
	}
	m, _ := e.Body["message"].(string)
	return m
}

// Payload is a loosely typed person record: either identity input received
// from a caller or a snapshot read back from the user module. Accessors
// tolerate the known alternate spellings of each field.
type Payload map[string]any

// Clone returns a shallow copy so callers can add fields without
// mutating the original.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SetDefault stores value under key only when no candidate spelling of
// the field already holds one.
func (p Payload) SetDefault(key string, value any, candidates []string) {
	if _, ok := FirstPresent(p, candidates); ok {
		return
	}
	p[key] = value
}

// NormalizeEmail trims and lowercases the payload's email in place, storing
// the result under the canonical key. Returns the normalized value, empty
// when no spelling of the field is present.
func (p Payload) NormalizeEmail() string {
	email, ok := FirstPresent(p, EmailKeys)
	if !ok {
		return ""
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	p["email"] = normalized
	return normalized
}

func (p Payload) Identification() string { return lookup(p, IdentificationKeys) }
func (p Payload) FirstName() string      { return lookup(p, FirstNameKeys) }
func (p Payload) LastName() string       { return lookup(p, LastNameKeys) }
func (p Payload) Email() string          { return lookup(p, EmailKeys) }
func (p Payload) Password() string       { return lookup(p, PasswordKeys) }
func (p Payload) Phone() string          { return lookup(p, PhoneKeys) }
func (p Payload) Gender() string         { return lookup(p, GenderKeys) }
func (p Payload) Address() string        { return lookup(p, AddressKeys) }

func lookup(p Payload, keys []string) string {
	v, _ := FirstPresent(p, keys)
	return v
}

// stringify renders scalar JSON values the way identifier fields expect:
// integral numbers without a decimal point, everything else via strconv.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
