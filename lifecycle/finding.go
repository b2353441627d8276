package lifecycle

import (
	"strings"
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// FindingRequest extends Request with the fields specific finding
// transitions require.
type FindingRequest struct {
	Request
	FixNotes         string     // required when requesting FIXED
	AcceptanceReason string     // required when requesting RISK_ACCEPTED
	ExpiresAt        *time.Time // optional acceptance expiry; must be strictly after the acceptance time
}

// TransitionFinding advances a finding to the requested status, enforcing
// the per-status preconditions and maintaining the remediation timestamps.
// The generic table check runs first, so e.g. OPEN -> VERIFIED fails as an
// invalid transition before any precondition is looked at.
//
// Reopening (any transition to OPEN) clears fixed_at, fix_notes,
// verified_at, risk_accepted_at, acceptance_reason and expires_at: a
// reopened finding starts its remediation cycle from scratch, and the
// discarded claims stay recoverable from the status history.
func TransitionFinding(finding model.Finding, req FindingRequest, now time.Time) (model.Finding, error) {
	decision := Validate(KindFinding, string(finding.Status), req.Status)
	if !decision.Allowed {
		return model.Finding{}, &InvalidTransitionError{
			Kind:      KindFinding,
			Current:   string(finding.Status),
			Requested: req.Status,
			Reason:    decision.Reason,
		}
	}

	now = clampToHistory(finding.StatusHistory, now)

	switch model.FindingStatus(req.Status) {
	case model.FindingStatusFixed:
		if strings.TrimSpace(req.FixNotes) == "" {
			return model.Finding{}, &MissingRequiredFieldError{
				Field:  "fix_notes",
				Reason: "FIXED requires fix_notes",
			}
		}
	case model.FindingStatusVerified:
		if finding.FixedAt == nil {
			return model.Finding{}, &MissingRequiredFieldError{
				Field:  "fixed_at",
				Reason: "VERIFIED requires the finding to have been marked FIXED first",
			}
		}
	case model.FindingStatusRiskAccepted:
		if strings.TrimSpace(req.AcceptanceReason) == "" {
			return model.Finding{}, &MissingRequiredFieldError{
				Field:  "acceptance_reason",
				Reason: "RISK_ACCEPTED requires acceptance_reason",
			}
		}
		if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
			return model.Finding{}, &MissingRequiredFieldError{
				Field:  "expires_at",
				Reason: "expires_at must be after risk_accepted_at",
			}
		}
	}

	finding.StatusHistory = appendEvent(finding.StatusHistory, string(finding.Status), req.Request, now)
	finding.Status = model.FindingStatus(req.Status)

	switch finding.Status {
	case model.FindingStatusFixed:
		at := now
		finding.FixedAt = &at
		finding.FixNotes = strings.TrimSpace(req.FixNotes)
	case model.FindingStatusVerified:
		at := now
		finding.VerifiedAt = &at
	case model.FindingStatusRiskAccepted:
		at := now
		finding.RiskAcceptedAt = &at
		finding.AcceptanceReason = strings.TrimSpace(req.AcceptanceReason)
		if req.ExpiresAt != nil {
			expires := *req.ExpiresAt
			finding.ExpiresAt = &expires
		}
	case model.FindingStatusOpen:
		finding.FixedAt = nil
		finding.FixNotes = ""
		finding.VerifiedAt = nil
		finding.RiskAcceptedAt = nil
		finding.AcceptanceReason = ""
		finding.ExpiresAt = nil
	}

	finding.UpdatedAt = now
	return finding, nil
}
