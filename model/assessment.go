// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import "time"

// AssessmentType represents the kind of engagement an assessment tracks
type AssessmentType string

const (
	// AssessmentTypePentest represents a manual penetration test engagement.
	AssessmentTypePentest AssessmentType = "pentest"
	// AssessmentTypeVulnScan represents an automated vulnerability scan cycle.
	AssessmentTypeVulnScan AssessmentType = "vuln_scan"
	// AssessmentTypeRedTeam represents an adversary-emulation engagement.
	AssessmentTypeRedTeam AssessmentType = "red_team"
	// AssessmentTypeAudit represents a compliance or configuration audit.
	AssessmentTypeAudit AssessmentType = "audit"
)

// IsValid checks whether the value is a known assessment type
func (t AssessmentType) IsValid() bool {
	switch t {
	case AssessmentTypePentest, AssessmentTypeVulnScan, AssessmentTypeRedTeam, AssessmentTypeAudit:
		return true
	default:
		return false
	}
}

// Assessment groups findings under one engagement. Assessments have no status
// machine of their own; their lifecycle is the start/end dates.
type Assessment struct {
	Key            string         `json:"_key,omitempty"`        // Unique identifier of the assessment in the database.
	Name           string         `json:"name"`                  // Human-readable engagement name.
	Description    string         `json:"description,omitempty"` // What the engagement covers.
	AssessmentType AssessmentType `json:"assessment_type"`       // The kind of engagement (e.g., "pentest").
	Scope          []string       `json:"scope,omitempty"`       // Hostnames, CIDRs or application names in scope.
	StartDate      *time.Time     `json:"start_date,omitempty"`  // When the engagement starts.
	EndDate        *time.Time     `json:"end_date,omitempty"`    // When the engagement ends.
	CompletedAt    *time.Time     `json:"completed_at,omitempty"` // Set when the engagement report was delivered.
	ObjType        string         `json:"objtype,omitempty"`     // The object type for database indexing (should be "Assessment").

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssessment creates a new Assessment instance with default values
func NewAssessment() *Assessment {
	now := time.Now()
	return &Assessment{
		ObjType:        "Assessment",
		AssessmentType: AssessmentTypeVulnScan,
		Scope:          []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
