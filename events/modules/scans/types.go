// Package scan defines types for Kafka event processing of scan submissions.
package scan

import (
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// ScanSubmittedEvent represents a scan submission published to Kafka by a
// scanner connector.
type ScanSubmittedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	// Actor who triggered the scan submission; empty for scheduled feeds.
	ActorID string `json:"actor_id,omitempty"`

	Scan model.ScanDocument `json:"scan"`
}
