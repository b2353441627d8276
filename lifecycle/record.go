package lifecycle

import (
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// Request carries the caller-supplied inputs of one status transition.
type Request struct {
	Status  string // requested new status
	ActorID string // empty for system-initiated transitions
	Notes   string // optional free-text context, recorded on the event
}

// clampToHistory keeps per-record event timestamps non-decreasing even when
// the wall clock steps backwards between requests.
func clampToHistory(history []model.StatusChangeEvent, now time.Time) time.Time {
	if len(history) == 0 {
		return now
	}
	if last := history[len(history)-1].OccurredAt; now.Before(last) {
		return last
	}
	return now
}

// appendEvent copies the history into a fresh backing array and appends one
// event. The copy keeps the caller's snapshot untouched, so a transition can
// be recomputed from the same snapshot after a write conflict.
func appendEvent(history []model.StatusChangeEvent, previous string, req Request, now time.Time) []model.StatusChangeEvent {
	events := make([]model.StatusChangeEvent, len(history), len(history)+1)
	copy(events, history)
	return append(events, model.StatusChangeEvent{
		PreviousStatus: previous,
		NewStatus:      req.Status,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		OccurredAt:     now,
	})
}

// TransitionAsset advances an asset to the requested status and appends
// exactly one history event. The input is passed and returned by value and
// is never mutated; on success the returned copy is ready to persist. On a
// rejected transition the error is an *InvalidTransitionError carrying the
// validator's reason.
func TransitionAsset(asset model.Asset, req Request, now time.Time) (model.Asset, error) {
	decision := Validate(KindAsset, string(asset.Status), req.Status)
	if !decision.Allowed {
		return model.Asset{}, &InvalidTransitionError{
			Kind:      KindAsset,
			Current:   string(asset.Status),
			Requested: req.Status,
			Reason:    decision.Reason,
		}
	}

	now = clampToHistory(asset.StatusHistory, now)
	asset.StatusHistory = appendEvent(asset.StatusHistory, string(asset.Status), req, now)
	asset.Status = model.AssetStatus(req.Status)
	asset.UpdatedAt = now
	return asset, nil
}

// TransitionVulnerability advances a vulnerability to the requested status
// and appends exactly one history event. Same contract as TransitionAsset.
func TransitionVulnerability(vulnerability model.Vulnerability, req Request, now time.Time) (model.Vulnerability, error) {
	decision := Validate(KindVulnerability, string(vulnerability.Status), req.Status)
	if !decision.Allowed {
		return model.Vulnerability{}, &InvalidTransitionError{
			Kind:      KindVulnerability,
			Current:   string(vulnerability.Status),
			Requested: req.Status,
			Reason:    decision.Reason,
		}
	}

	now = clampToHistory(vulnerability.StatusHistory, now)
	vulnerability.StatusHistory = appendEvent(vulnerability.StatusHistory, string(vulnerability.Status), req, now)
	vulnerability.Status = model.VulnerabilityStatus(req.Status)
	vulnerability.UpdatedAt = now
	return vulnerability, nil
}
