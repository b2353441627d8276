package model

import "testing"

func TestAssessmentTypeIsValid(t *testing.T) {
	valid := []AssessmentType{
		AssessmentTypePentest, AssessmentTypeVulnScan, AssessmentTypeRedTeam, AssessmentTypeAudit,
	}
	for _, at := range valid {
		if !at.IsValid() {
			t.Errorf("assessment type %q should be valid", at)
		}
	}
	if AssessmentType("bug_bounty").IsValid() {
		t.Error("unknown assessment type reported as valid")
	}
}

func TestNewAssessmentDefaults(t *testing.T) {
	a := NewAssessment()
	if a.ObjType != "Assessment" {
		t.Errorf("ObjType = %q, want Assessment", a.ObjType)
	}
	if a.AssessmentType != AssessmentTypeVulnScan {
		t.Errorf("AssessmentType = %q, want vuln_scan", a.AssessmentType)
	}
	if a.Scope == nil {
		t.Error("Scope should default to an empty slice, not nil")
	}
	if a.CompletedAt != nil {
		t.Error("new assessments must not be completed")
	}
}
