// Package finding defines types for Kafka event production of finding status
// change events.
package finding

import (
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// FindingStatusChangedEvent represents a finding status change published to Kafka.
type FindingStatusChangedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	FindingKey       string `json:"finding_key"`
	AssetKey         string `json:"asset_key,omitempty"`
	VulnerabilityKey string `json:"vulnerability_key,omitempty"`

	Change model.StatusChangeEvent `json:"change"`
}
