// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import (
	"fmt"
	"strings"
	"time"
)

// FindingStatus represents where a finding sits in its remediation lifecycle
type FindingStatus string

const (
	// FindingStatusOpen means the finding is confirmed present and awaiting remediation.
	FindingStatusOpen FindingStatus = "OPEN"
	// FindingStatusMitigated means a compensating control reduces the risk but the root cause remains.
	FindingStatusMitigated FindingStatus = "MITIGATED"
	// FindingStatusFixed means the remediation was applied; fix notes are required to claim it.
	FindingStatusFixed FindingStatus = "FIXED"
	// FindingStatusVerified means retesting confirmed the fix; requires a prior FIXED.
	FindingStatusVerified FindingStatus = "VERIFIED"
	// FindingStatusRiskAccepted means the risk owner formally accepted the finding, optionally until an expiry date.
	FindingStatusRiskAccepted FindingStatus = "RISK_ACCEPTED"
	// FindingStatusFalsePositive means the finding was determined not to be real. Terminal.
	FindingStatusFalsePositive FindingStatus = "FALSE_POSITIVE"
)

// IsValid checks whether the status is a known finding status
func (s FindingStatus) IsValid() bool {
	switch s {
	case FindingStatusOpen, FindingStatusMitigated, FindingStatusFixed,
		FindingStatusVerified, FindingStatusRiskAccepted, FindingStatusFalsePositive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s FindingStatus) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the status
func (s FindingStatus) DisplayName() string {
	switch s {
	case FindingStatusOpen:
		return "Open"
	case FindingStatusMitigated:
		return "Mitigated"
	case FindingStatusFixed:
		return "Fixed"
	case FindingStatusVerified:
		return "Verified"
	case FindingStatusRiskAccepted:
		return "Risk Accepted"
	case FindingStatusFalsePositive:
		return "False Positive"
	default:
		return string(s)
	}
}

// ParseFindingStatus parses a string into a FindingStatus
func ParseFindingStatus(s string) (FindingStatus, error) {
	status := FindingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid finding status: %s", s)
	}
	return status, nil
}

// AllFindingStatuses returns all valid finding statuses
func AllFindingStatuses() []FindingStatus {
	return []FindingStatus{
		FindingStatusOpen,
		FindingStatusMitigated,
		FindingStatusFixed,
		FindingStatusVerified,
		FindingStatusRiskAccepted,
		FindingStatusFalsePositive,
	}
}

// Finding represents one vulnerability observed on one asset, usually within
// an assessment. The (asset, vulnerability, port, protocol) tuple is the
// instance identity scan imports dedup on.
type Finding struct {
	Key              string `json:"_key,omitempty"`              // Unique identifier of the finding in the database.
	AssessmentKey    string `json:"assessment_key,omitempty"`    // Assessment the finding belongs to.
	AssetKey         string `json:"asset_key"`                   // Asset the vulnerability was observed on.
	VulnerabilityKey string `json:"vulnerability_key"`           // Vulnerability that was observed.
	Title            string `json:"title"`                       // Title snapshot, denormalized from the vulnerability for list views.
	Severity         string `json:"severity"`                    // Severity snapshot at observation time.
	Port             int    `json:"port"`                        // Network port the observation was made on; 0 when not applicable.
	Protocol         string `json:"protocol,omitempty"`          // Network protocol (e.g., "tcp").
	Evidence         string `json:"evidence,omitempty"`          // Scanner output or manual proof supporting the finding.
	Remediation      string `json:"remediation,omitempty"`       // Remediation guidance for this instance.
	InstalledVersion string `json:"installed_version,omitempty"` // Affected package version seen by the scanner, when known.
	PackagePURL      string `json:"package_purl,omitempty"`      // Base PURL of the affected package, when known.
	ObjType          string `json:"objtype,omitempty"`           // The object type for database indexing (should be "Finding").

	Status        FindingStatus       `json:"status"`         // Current lifecycle status; always agrees with the last history entry.
	StatusHistory []StatusChangeEvent `json:"status_history"` // Append-only audit log of accepted status transitions.

	// Lifecycle fields. Set only by the transition that claims them and
	// cleared together when the finding is reopened.
	FixedAt          *time.Time `json:"fixed_at,omitempty"`          // When the finding was marked FIXED.
	FixNotes         string     `json:"fix_notes,omitempty"`         // What was done to fix it; required to enter FIXED.
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`       // When retesting confirmed the fix.
	RiskAcceptedAt   *time.Time `json:"risk_accepted_at,omitempty"`  // When the risk was formally accepted.
	AcceptanceReason string     `json:"acceptance_reason,omitempty"` // Why the risk was accepted; required to enter RISK_ACCEPTED.
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`        // When the risk acceptance lapses; must be after risk_accepted_at.

	FirstSeenAt *time.Time `json:"first_seen_at,omitempty"` // First scan import that reported this instance.
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`  // Most recent scan import that reported this instance.
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewFinding creates a new Finding instance with default values
func NewFinding() *Finding {
	now := time.Now()
	return &Finding{
		ObjType:       "Finding",
		Status:        FindingStatusOpen,
		StatusHistory: []StatusChangeEvent{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
