package admin

import (
	"testing"
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

func event(from, to string, at time.Time) model.StatusChangeEvent {
	return model.StatusChangeEvent{PreviousStatus: from, NewStatus: to, OccurredAt: at}
}

func TestLastEntered(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	history := []model.StatusChangeEvent{
		event("OPEN", "FIXED", t0),
		event("FIXED", "OPEN", t0.Add(time.Hour)),
		event("OPEN", "FIXED", t0.Add(2*time.Hour)),
	}

	got := lastEntered(history, model.FindingStatusFixed)
	if got == nil || !got.Equal(t0.Add(2*time.Hour)) {
		t.Errorf("lastEntered(FIXED) = %v, want the most recent entry", got)
	}
	if lastEntered(history, model.FindingStatusVerified) != nil {
		t.Error("lastEntered for a status never entered should be nil")
	}
	if lastEntered(nil, model.FindingStatusFixed) != nil {
		t.Error("lastEntered on empty history should be nil")
	}
}

func TestRepairTimestampsClearsStaleClaimsWhenOpen(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finding := model.Finding{
		Status:           model.FindingStatusOpen,
		FixedAt:          &t0,
		FixNotes:         "patched",
		VerifiedAt:       &t0,
		RiskAcceptedAt:   &t0,
		AcceptanceReason: "legacy",
		ExpiresAt:        &t0,
	}

	update := map[string]interface{}{}
	if !repairTimestamps(finding, model.FindingStatusOpen, update) {
		t.Fatal("stale lifecycle fields on an OPEN finding should need repair")
	}
	for _, field := range []string{"fixed_at", "fix_notes", "verified_at", "risk_accepted_at", "acceptance_reason", "expires_at"} {
		if _, ok := update[field]; !ok {
			t.Errorf("update missing cleared field %s", field)
		}
	}
}

func TestRepairTimestampsCleanOpenFinding(t *testing.T) {
	update := map[string]interface{}{}
	if repairTimestamps(model.Finding{Status: model.FindingStatusOpen}, model.FindingStatusOpen, update) {
		t.Error("a clean OPEN finding should not need repair")
	}
	if len(update) != 0 {
		t.Errorf("update should stay empty, got %v", update)
	}
}

func TestRepairTimestampsFixed(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finding := model.Finding{
		Status:        model.FindingStatusFixed,
		StatusHistory: []model.StatusChangeEvent{event("OPEN", "FIXED", t0)},
	}

	// Missing fixed_at is restored from the history.
	update := map[string]interface{}{}
	if !repairTimestamps(finding, model.FindingStatusFixed, update) {
		t.Fatal("missing fixed_at should need repair")
	}
	restored, ok := update["fixed_at"].(*time.Time)
	if !ok || !restored.Equal(t0) {
		t.Errorf("fixed_at = %v, want %v from history", update["fixed_at"], t0)
	}

	// A matching fixed_at needs nothing.
	finding.FixedAt = &t0
	update = map[string]interface{}{}
	if repairTimestamps(finding, model.FindingStatusFixed, update) {
		t.Error("matching fixed_at should not need repair")
	}

	// A verified_at on a FIXED finding is stale; verification was undone.
	finding.VerifiedAt = &t0
	update = map[string]interface{}{}
	if !repairTimestamps(finding, model.FindingStatusFixed, update) {
		t.Fatal("stale verified_at should need repair")
	}
	if _, ok := update["verified_at"]; !ok {
		t.Error("update should clear verified_at")
	}
}

func TestRepairTimestampsVerified(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	finding := model.Finding{
		Status: model.FindingStatusVerified,
		StatusHistory: []model.StatusChangeEvent{
			event("OPEN", "FIXED", t0),
			event("FIXED", "VERIFIED", t1),
		},
	}

	update := map[string]interface{}{}
	if !repairTimestamps(finding, model.FindingStatusVerified, update) {
		t.Fatal("missing timestamps on a VERIFIED finding should need repair")
	}
	fixedAt, ok := update["fixed_at"].(*time.Time)
	if !ok || !fixedAt.Equal(t0) {
		t.Errorf("fixed_at = %v, want %v", update["fixed_at"], t0)
	}
	verifiedAt, ok := update["verified_at"].(*time.Time)
	if !ok || !verifiedAt.Equal(t1) {
		t.Errorf("verified_at = %v, want %v", update["verified_at"], t1)
	}
}

func TestRepairTimestampsRiskAccepted(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finding := model.Finding{
		Status:        model.FindingStatusRiskAccepted,
		StatusHistory: []model.StatusChangeEvent{event("OPEN", "RISK_ACCEPTED", t0)},
	}

	update := map[string]interface{}{}
	if !repairTimestamps(finding, model.FindingStatusRiskAccepted, update) {
		t.Fatal("missing risk_accepted_at should need repair")
	}
	acceptedAt, ok := update["risk_accepted_at"].(*time.Time)
	if !ok || !acceptedAt.Equal(t0) {
		t.Errorf("risk_accepted_at = %v, want %v", update["risk_accepted_at"], t0)
	}
}

func TestRepairTimestampsFalsePositiveUntouched(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	finding := model.Finding{
		Status:        model.FindingStatusFalsePositive,
		FixedAt:       &t0,
		StatusHistory: []model.StatusChangeEvent{event("OPEN", "FALSE_POSITIVE", t0)},
	}
	update := map[string]interface{}{}
	if repairTimestamps(finding, model.FindingStatusFalsePositive, update) {
		t.Error("FALSE_POSITIVE findings keep their historical fields as-is")
	}
}
