// Package audit captures the administrative paper trail: who was
// registered, retired or re-enrolled, and which identity resolutions had
// to fall back to a degraded path. Events are append-only and carry
// masked identifiers only; raw national IDs never enter the trail.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers registrations and enrollments, the records
	// the institution must be able to account for long after the fact.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers deactivations and rejected credentials,
	// the events a reviewer checks when access looks wrong.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine updates and degraded-mode
	// resolutions. Short retention, useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Action names one auditable step in the program's administration.
type Action string

const (
	ActionAdministratorRegistered  Action = "administrator_registered"
	ActionAdministratorUpdated     Action = "administrator_updated"
	ActionAdministratorDeactivated Action = "administrator_deactivated"

	ActionCoachRegistered  Action = "coach_registered"
	ActionCoachUpdated     Action = "coach_updated"
	ActionCoachDeactivated Action = "coach_deactivated"
	ActionCoachReactivated Action = "coach_reactivated"

	ActionVolunteerRegistered  Action = "volunteer_registered"
	ActionVolunteerUpdated     Action = "volunteer_updated"
	ActionVolunteerDeactivated Action = "volunteer_deactivated"
	ActionVolunteerReactivated Action = "volunteer_reactivated"

	ActionAthleteEnrolled     Action = "athlete_enrolled"
	ActionAthleteUpdated      Action = "athlete_updated"
	ActionEnrollmentReenabled Action = "enrollment_reenabled"
	ActionEnrollmentToggled   Action = "enrollment_toggled"

	ActionIdentityFallbackUsed Action = "identity_fallback_used"
)

// actionCategories maps each action to its category. Registrations are
// compliance records, deactivations are security relevant, the rest is
// operational noise that can be sampled.
var actionCategories = map[Action]EventCategory{
	ActionAdministratorRegistered: CategoryCompliance,
	ActionCoachRegistered:         CategoryCompliance,
	ActionVolunteerRegistered:     CategoryCompliance,
	ActionAthleteEnrolled:         CategoryCompliance,

	ActionAdministratorDeactivated: CategorySecurity,
	ActionCoachDeactivated:         CategorySecurity,
	ActionVolunteerDeactivated:     CategorySecurity,

	ActionAdministratorUpdated: CategoryOperations,
	ActionCoachUpdated:         CategoryOperations,
	ActionCoachReactivated:     CategoryOperations,
	ActionVolunteerUpdated:     CategoryOperations,
	ActionVolunteerReactivated: CategoryOperations,
	ActionAthleteUpdated:       CategoryOperations,
	ActionEnrollmentReenabled:  CategoryOperations,
	ActionEnrollmentToggled:    CategoryOperations,
	ActionIdentityFallbackUsed: CategoryOperations,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    Action
	// Role is the local record type involved: administrador, entrenador,
	// estudiante_vinculacion or atleta.
	Role string
	// RecordID is the local row id when the record already exists.
	RecordID int64
	// ExternalRef is the person reference attached to the record. Synthetic
	// references appear here as-is; they are part of the story being told.
	ExternalRef string
	// NationalID is the masked form produced by privacy.MaskNationalID.
	NationalID string
	// Outcome qualifies the action, e.g. which resolution step produced
	// the reference (registered, search, scan, synthetic).
	Outcome string
	Reason  string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}
