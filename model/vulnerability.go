// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/osv-scanner/pkg/models"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// VulnerabilityStatus represents the triage status of a vulnerability record
type VulnerabilityStatus string

const (
	// VulnerabilityStatusOpen means the vulnerability is known but not yet triaged.
	VulnerabilityStatusOpen VulnerabilityStatus = "OPEN"
	// VulnerabilityStatusConfirmed means triage validated the vulnerability as real and applicable.
	VulnerabilityStatusConfirmed VulnerabilityStatus = "CONFIRMED"
	// VulnerabilityStatusResolved means every known instance was remediated.
	VulnerabilityStatusResolved VulnerabilityStatus = "RESOLVED"
	// VulnerabilityStatusFalsePositive means triage rejected the vulnerability. Terminal.
	VulnerabilityStatusFalsePositive VulnerabilityStatus = "FALSE_POSITIVE"
)

// IsValid checks whether the status is a known vulnerability status
func (s VulnerabilityStatus) IsValid() bool {
	switch s {
	case VulnerabilityStatusOpen, VulnerabilityStatusConfirmed, VulnerabilityStatusResolved, VulnerabilityStatusFalsePositive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s VulnerabilityStatus) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the status
func (s VulnerabilityStatus) DisplayName() string {
	switch s {
	case VulnerabilityStatusOpen:
		return "Open"
	case VulnerabilityStatusConfirmed:
		return "Confirmed"
	case VulnerabilityStatusResolved:
		return "Resolved"
	case VulnerabilityStatusFalsePositive:
		return "False Positive"
	default:
		return string(s)
	}
}

// ParseVulnerabilityStatus parses a string into a VulnerabilityStatus
func ParseVulnerabilityStatus(s string) (VulnerabilityStatus, error) {
	status := VulnerabilityStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid vulnerability status: %s", s)
	}
	return status, nil
}

// AllVulnerabilityStatuses returns all valid vulnerability statuses
func AllVulnerabilityStatuses() []VulnerabilityStatus {
	return []VulnerabilityStatus{
		VulnerabilityStatusOpen,
		VulnerabilityStatusConfirmed,
		VulnerabilityStatusResolved,
		VulnerabilityStatusFalsePositive,
	}
}

// Vulnerability represents one weakness tracked across assets. Findings tie a
// vulnerability to the concrete asset and assessment it was observed on.
type Vulnerability struct {
	Key           string   `json:"_key,omitempty"`          // Unique identifier of the vulnerability in the database.
	Title         string   `json:"title"`                   // Short human-readable title.
	Description   string   `json:"description,omitempty"`   // Longer description of the weakness.
	CveID         string   `json:"cve_id,omitempty"`        // CVE identifier when assigned; primary dedup key on import.
	CweID         string   `json:"cwe_id,omitempty"`        // CWE identifier when known.
	Severity      string   `json:"severity"`                // NONE, LOW, MEDIUM, HIGH or CRITICAL; derived from the CVSS score when a vector is present.
	CVSSVector    string   `json:"cvss_vector,omitempty"`   // CVSS 3.x or 4.0 vector string.
	CVSSBaseScore float64  `json:"cvss_base_score"`         // CVSS base score computed from the vector.
	Scanner       string   `json:"scanner,omitempty"`       // Scanner that reported the vulnerability (e.g., "nessus").
	PluginID      string   `json:"plugin_id,omitempty"`     // Scanner plugin identity; fallback dedup key when no CVE exists.
	Remediation   string   `json:"remediation,omitempty"`   // Suggested remediation text.
	References    []string `json:"references,omitempty"`    // Advisory and writeup URLs.
	ObjType       string   `json:"objtype,omitempty"`       // The object type for database indexing (should be "Vulnerability").

	// Affected carries OSV-style version range data when the vulnerability
	// maps to known packages; import reconciliation uses it to judge
	// whether reported package versions are actually affected.
	Affected []models.Affected `json:"affected,omitempty"`

	Status        VulnerabilityStatus `json:"status"`         // Current triage status; always agrees with the last history entry.
	StatusHistory []StatusChangeEvent `json:"status_history"` // Append-only audit log of accepted status transitions.

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVulnerability creates a new Vulnerability instance with default values
func NewVulnerability() *Vulnerability {
	now := time.Now()
	return &Vulnerability{
		ObjType:       "Vulnerability",
		Status:        VulnerabilityStatusOpen,
		StatusHistory: []StatusChangeEvent{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// EnrichScore derives the CVSS base score and severity rating from the vector
// when one is present. A record without a vector keeps whatever severity the
// scanner or the user supplied.
func (v *Vulnerability) EnrichScore() {
	if v.CVSSVector != "" {
		if score := util.CalculateCVSSScore(v.CVSSVector); score > 0 {
			v.CVSSBaseScore = score
			v.Severity = util.GetSeverityRating(score)
			return
		}
	}
	if v.Severity == "" {
		v.Severity = util.GetSeverityRating(v.CVSSBaseScore)
	}
	v.Severity = strings.ToUpper(v.Severity)
}
