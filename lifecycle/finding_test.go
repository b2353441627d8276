package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

func testFinding() model.Finding {
	finding := *model.NewFinding()
	finding.Title = "Outdated OpenSSH server"
	finding.AssetKey = "12345"
	finding.VulnerabilityKey = "67890"
	finding.Severity = "HIGH"
	return finding
}

func TestFindingFixedRequiresFixNotes(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	finding := testFinding()

	for _, notes := range []string{"", "   "} {
		_, err := TransitionFinding(finding, FindingRequest{
			Request:  Request{Status: "FIXED", ActorID: "eng-2"},
			FixNotes: notes,
		}, now)
		var missing *MissingRequiredFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("fix notes %q: expected *MissingRequiredFieldError, got %v", notes, err)
		}
		if missing.Field != "fix_notes" {
			t.Errorf("field = %q, want fix_notes", missing.Field)
		}
		if missing.Reason != "FIXED requires fix_notes" {
			t.Errorf("reason = %q", missing.Reason)
		}
	}

	if finding.Status != model.FindingStatusOpen || len(finding.StatusHistory) != 0 {
		t.Error("rejected transition altered the snapshot")
	}
}

func TestFindingVerifyStraightFromOpenRejected(t *testing.T) {
	_, err := TransitionFinding(testFinding(), FindingRequest{Request: Request{Status: "VERIFIED", ActorID: "analyst"}}, time.Now())
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "OPEN") {
		t.Errorf("reason %q should name the current status", invalid.Reason)
	}
}

func TestFindingVerifyRequiresFixedTimestamp(t *testing.T) {
	// A finding imported straight into FIXED has no recorded fixed_at.
	finding := testFinding()
	finding.Status = model.FindingStatusFixed

	_, err := TransitionFinding(finding, FindingRequest{Request: Request{Status: "VERIFIED", ActorID: "analyst"}}, time.Now())
	var missing *MissingRequiredFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingRequiredFieldError, got %v", err)
	}
	if missing.Field != "fixed_at" {
		t.Errorf("field = %q, want fixed_at", missing.Field)
	}
}

func TestFindingRemediationChain(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	finding := testFinding()

	mitigated, err := TransitionFinding(finding, FindingRequest{
		Request: Request{Status: "MITIGATED", ActorID: "analyst-1", Notes: "WAF rule in place"},
	}, start)
	if err != nil {
		t.Fatalf("mitigate: %v", err)
	}

	fixed, err := TransitionFinding(mitigated, FindingRequest{
		Request:  Request{Status: "FIXED", ActorID: "eng-2"},
		FixNotes: "upgraded openssh to 9.8p1",
	}, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if fixed.FixedAt == nil || !fixed.FixedAt.Equal(start.Add(time.Hour)) {
		t.Errorf("fixed_at = %v, want %s", fixed.FixedAt, start.Add(time.Hour))
	}
	if fixed.FixNotes != "upgraded openssh to 9.8p1" {
		t.Errorf("fix_notes = %q", fixed.FixNotes)
	}

	verified, err := TransitionFinding(fixed, FindingRequest{
		Request: Request{Status: "VERIFIED", ActorID: "analyst-1"},
	}, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.VerifiedAt == nil || !verified.VerifiedAt.Equal(start.Add(2*time.Hour)) {
		t.Errorf("verified_at = %v, want %s", verified.VerifiedAt, start.Add(2*time.Hour))
	}
	if verified.FixedAt == nil {
		t.Error("verification dropped fixed_at")
	}

	if len(verified.StatusHistory) != 3 {
		t.Fatalf("history has %d events, want 3", len(verified.StatusHistory))
	}
	for i := 0; i+1 < len(verified.StatusHistory); i++ {
		a, b := verified.StatusHistory[i], verified.StatusHistory[i+1]
		if a.NewStatus != b.PreviousStatus {
			t.Errorf("history break at %d: %s then %s", i, a.NewStatus, b.PreviousStatus)
		}
	}
}

func TestFindingRiskAcceptanceRequiresReason(t *testing.T) {
	_, err := TransitionFinding(testFinding(), FindingRequest{
		Request: Request{Status: "RISK_ACCEPTED", ActorID: "ciso"},
	}, time.Now())
	var missing *MissingRequiredFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingRequiredFieldError, got %v", err)
	}
	if missing.Field != "acceptance_reason" {
		t.Errorf("field = %q, want acceptance_reason", missing.Field)
	}
}

func TestFindingRiskAcceptanceExpiryOrdering(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	finding := testFinding()

	// An expiry at or before the acceptance time is rejected outright.
	for _, expires := range []time.Time{now.Add(-time.Second), now} {
		expires := expires
		_, err := TransitionFinding(finding, FindingRequest{
			Request:          Request{Status: "RISK_ACCEPTED", ActorID: "ciso"},
			AcceptanceReason: "legacy system, replacement scheduled",
			ExpiresAt:        &expires,
		}, now)
		var missing *MissingRequiredFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expiry %s: expected *MissingRequiredFieldError, got %v", expires, err)
		}
		if missing.Field != "expires_at" {
			t.Errorf("field = %q, want expires_at", missing.Field)
		}
	}

	expires := now.Add(90 * 24 * time.Hour)
	accepted, err := TransitionFinding(finding, FindingRequest{
		Request:          Request{Status: "RISK_ACCEPTED", ActorID: "ciso"},
		AcceptanceReason: "legacy system, replacement scheduled",
		ExpiresAt:        &expires,
	}, now)
	if err != nil {
		t.Fatalf("accept risk: %v", err)
	}
	if accepted.RiskAcceptedAt == nil || !accepted.RiskAcceptedAt.Equal(now) {
		t.Errorf("risk_accepted_at = %v, want %s", accepted.RiskAcceptedAt, now)
	}
	if accepted.ExpiresAt == nil || !accepted.ExpiresAt.Equal(expires) {
		t.Errorf("expires_at = %v, want %s", accepted.ExpiresAt, expires)
	}
	if accepted.AcceptanceReason != "legacy system, replacement scheduled" {
		t.Errorf("acceptance_reason = %q", accepted.AcceptanceReason)
	}
}

func TestFindingRiskAcceptanceWithoutExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	accepted, err := TransitionFinding(testFinding(), FindingRequest{
		Request:          Request{Status: "RISK_ACCEPTED", ActorID: "ciso"},
		AcceptanceReason: "air-gapped lab network",
	}, now)
	if err != nil {
		t.Fatalf("accept risk: %v", err)
	}
	if accepted.ExpiresAt != nil {
		t.Errorf("expires_at = %v, want nil for an open-ended acceptance", accepted.ExpiresAt)
	}
}

func TestFindingReopenClearsRemediationFields(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	fixed, err := TransitionFinding(testFinding(), FindingRequest{
		Request:  Request{Status: "FIXED", ActorID: "eng-2"},
		FixNotes: "patched",
	}, start)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	verified, err := TransitionFinding(fixed, FindingRequest{
		Request: Request{Status: "VERIFIED", ActorID: "analyst-1"},
	}, start.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	reopened, err := TransitionFinding(verified, FindingRequest{
		Request: Request{Status: "OPEN", ActorID: "", Notes: "detected again by weekly scan"},
	}, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != model.FindingStatusOpen {
		t.Errorf("status = %s, want OPEN", reopened.Status)
	}
	if reopened.FixedAt != nil || reopened.FixNotes != "" || reopened.VerifiedAt != nil {
		t.Error("reopen kept remediation fields")
	}
	if reopened.RiskAcceptedAt != nil || reopened.AcceptanceReason != "" || reopened.ExpiresAt != nil {
		t.Error("reopen kept acceptance fields")
	}
	if len(reopened.StatusHistory) != 3 {
		t.Errorf("history has %d events, want 3; reopening must not erase history", len(reopened.StatusHistory))
	}
}

func TestFindingReopenClearsAcceptance(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(30 * 24 * time.Hour)

	accepted, err := TransitionFinding(testFinding(), FindingRequest{
		Request:          Request{Status: "RISK_ACCEPTED", ActorID: "ciso"},
		AcceptanceReason: "compensating control in place",
		ExpiresAt:        &expires,
	}, now)
	if err != nil {
		t.Fatalf("accept risk: %v", err)
	}

	reopened, err := TransitionFinding(accepted, FindingRequest{
		Request: Request{Status: "OPEN", Notes: "acceptance expired"},
	}, now.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.RiskAcceptedAt != nil || reopened.AcceptanceReason != "" || reopened.ExpiresAt != nil {
		t.Error("reopen kept acceptance fields")
	}
}

func TestFindingFalsePositiveIsTerminal(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	closed, err := TransitionFinding(testFinding(), FindingRequest{
		Request: Request{Status: "FALSE_POSITIVE", ActorID: "analyst-1", Notes: "duplicate of plugin 99999"},
	}, now)
	if err != nil {
		t.Fatalf("close as false positive: %v", err)
	}

	_, err = TransitionFinding(closed, FindingRequest{Request: Request{Status: "OPEN"}}, now.Add(time.Minute))
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "terminal") {
		t.Errorf("reason %q should mention the status is terminal", invalid.Reason)
	}

	// Preconditions never apply once the table has denied the move.
	_, err = TransitionFinding(closed, FindingRequest{Request: Request{Status: "FIXED"}}, now.Add(time.Minute))
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
}

func TestFindingFalsePositiveReachableFromEveryOtherStatus(t *testing.T) {
	for _, status := range Statuses(KindFinding) {
		if status == "FALSE_POSITIVE" {
			continue
		}
		if !contains(AllowedNextStatuses(KindFinding, status), "FALSE_POSITIVE") {
			t.Errorf("FALSE_POSITIVE not reachable from %s", status)
		}
	}
}
