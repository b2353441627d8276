package model

import "testing"

func TestParseFindingStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    FindingStatus
		wantErr bool
	}{
		{"OPEN", FindingStatusOpen, false},
		{"fixed", FindingStatusFixed, false},
		{" risk_accepted ", FindingStatusRiskAccepted, false},
		{"FALSE_POSITIVE", FindingStatusFalsePositive, false},
		{"CLOSED", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFindingStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFindingStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFindingStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllFindingStatusesAreValid(t *testing.T) {
	statuses := AllFindingStatuses()
	if len(statuses) != 6 {
		t.Fatalf("AllFindingStatuses returned %d statuses, want 6", len(statuses))
	}
	seen := make(map[FindingStatus]bool)
	for _, status := range statuses {
		if !status.IsValid() {
			t.Errorf("AllFindingStatuses returned invalid status %q", status)
		}
		if seen[status] {
			t.Errorf("AllFindingStatuses returned %q twice", status)
		}
		seen[status] = true
	}
}

func TestFindingStatusDisplayName(t *testing.T) {
	tests := []struct {
		status FindingStatus
		want   string
	}{
		{FindingStatusRiskAccepted, "Risk Accepted"},
		{FindingStatusFalsePositive, "False Positive"},
		{FindingStatus("WEIRD"), "WEIRD"},
	}
	for _, tt := range tests {
		if got := tt.status.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestNewFindingDefaults(t *testing.T) {
	f := NewFinding()
	if f.ObjType != "Finding" {
		t.Errorf("ObjType = %q, want Finding", f.ObjType)
	}
	if f.Status != FindingStatusOpen {
		t.Errorf("Status = %q, want OPEN", f.Status)
	}
	if f.StatusHistory == nil || len(f.StatusHistory) != 0 {
		t.Errorf("StatusHistory = %v, want empty non-nil slice", f.StatusHistory)
	}
	if f.FixedAt != nil || f.VerifiedAt != nil || f.RiskAcceptedAt != nil || f.ExpiresAt != nil {
		t.Error("new findings must not carry lifecycle timestamps")
	}
}
