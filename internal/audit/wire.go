package audit

import "time"

// wireEvent is the JSON shape an event takes between the outbox table and
// the audit_log materializer. It travels through the audit_outbox payload
// column and across Kafka unchanged, so renaming a field here is a wire
// format change.
type wireEvent struct {
	EventID     string    `json:"event_id"`
	Category    string    `json:"category"`
	Action      string    `json:"action"`
	Role        string    `json:"role,omitempty"`
	RecordID    int64     `json:"record_id,omitempty"`
	ExternalRef string    `json:"external_ref,omitempty"`
	NationalID  string    `json:"national_id,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func newWireEvent(eventID string, event Event) wireEvent {
	return wireEvent{
		EventID:     eventID,
		Category:    string(event.Category),
		Action:      string(event.Action),
		Role:        event.Role,
		RecordID:    event.RecordID,
		ExternalRef: event.ExternalRef,
		NationalID:  event.NationalID,
		Outcome:     event.Outcome,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		OccurredAt:  event.Timestamp,
	}
}
