package model

import "testing"

func TestParseVulnerabilityStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    VulnerabilityStatus
		wantErr bool
	}{
		{"OPEN", VulnerabilityStatusOpen, false},
		{"confirmed", VulnerabilityStatusConfirmed, false},
		{" false_positive ", VulnerabilityStatusFalsePositive, false},
		{"CLOSED", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVulnerabilityStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVulnerabilityStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVulnerabilityStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllVulnerabilityStatusesAreValid(t *testing.T) {
	statuses := AllVulnerabilityStatuses()
	if len(statuses) != 4 {
		t.Fatalf("AllVulnerabilityStatuses returned %d statuses, want 4", len(statuses))
	}
	for _, status := range statuses {
		if !status.IsValid() {
			t.Errorf("AllVulnerabilityStatuses returned invalid status %q", status)
		}
	}
}

func TestEnrichScoreFromVector(t *testing.T) {
	v := &Vulnerability{
		CVSSVector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
		Severity:   "low", // the vector wins over whatever the scanner claimed
	}
	v.EnrichScore()
	if v.CVSSBaseScore != 9.8 {
		t.Errorf("CVSSBaseScore = %v, want 9.8", v.CVSSBaseScore)
	}
	if v.Severity != "CRITICAL" {
		t.Errorf("Severity = %q, want CRITICAL", v.Severity)
	}
}

func TestEnrichScoreWithoutVector(t *testing.T) {
	v := &Vulnerability{Severity: "high"}
	v.EnrichScore()
	if v.Severity != "HIGH" {
		t.Errorf("Severity = %q, want supplied severity uppercased", v.Severity)
	}
	if v.CVSSBaseScore != 0 {
		t.Errorf("CVSSBaseScore = %v, want 0", v.CVSSBaseScore)
	}
}

func TestEnrichScoreDerivesSeverityFromScore(t *testing.T) {
	v := &Vulnerability{CVSSBaseScore: 5.3}
	v.EnrichScore()
	if v.Severity != "MEDIUM" {
		t.Errorf("Severity = %q, want MEDIUM derived from base score", v.Severity)
	}
}

func TestEnrichScoreUnparseableVector(t *testing.T) {
	v := &Vulnerability{CVSSVector: "CVSS:3.1/garbage", Severity: "medium"}
	v.EnrichScore()
	if v.Severity != "MEDIUM" {
		t.Errorf("Severity = %q, want supplied severity kept when the vector fails to parse", v.Severity)
	}
	if v.CVSSBaseScore != 0 {
		t.Errorf("CVSSBaseScore = %v, want 0", v.CVSSBaseScore)
	}
}

func TestNewVulnerabilityDefaults(t *testing.T) {
	v := NewVulnerability()
	if v.ObjType != "Vulnerability" {
		t.Errorf("ObjType = %q, want Vulnerability", v.ObjType)
	}
	if v.Status != VulnerabilityStatusOpen {
		t.Errorf("Status = %q, want OPEN", v.Status)
	}
	if v.StatusHistory == nil {
		t.Error("StatusHistory should default to an empty slice, not nil")
	}
}
