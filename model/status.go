// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import "time"

// StatusChangeEvent is one immutable entry in an entity's status history.
// Events are created exactly once when a transition is accepted and are never
// edited or removed afterwards; corrections are expressed as new forward
// transitions, not history edits.
type StatusChangeEvent struct {
	PreviousStatus string    `json:"previous_status"`    // Status the entity held before this transition.
	NewStatus      string    `json:"new_status"`         // Status the transition moved the entity to.
	ActorID        string    `json:"actor_id,omitempty"` // User who performed the change; empty for system-initiated changes.
	Notes          string    `json:"notes,omitempty"`    // Optional free text supplied with the transition.
	OccurredAt     time.Time `json:"occurred_at"`        // When the transition was accepted; non-decreasing within one history.
}

// LastStatus returns the new_status of the most recent history entry, or
// fallback when the history is empty. An entity's status field always agrees
// with this value.
func LastStatus(history []StatusChangeEvent, fallback string) string {
	if len(history) == 0 {
		return fallback
	}
	return history[len(history)-1].NewStatus
}
