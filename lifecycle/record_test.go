package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

func TestTransitionAssetAppendsOneEvent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	asset := *model.NewAsset()
	asset.Name = "db-prod-01"

	updated, err := TransitionAsset(asset, Request{Status: "UNDER_MAINTENANCE", ActorID: "user-7", Notes: "kernel patching"}, now)
	if err != nil {
		t.Fatalf("TransitionAsset: %v", err)
	}
	if updated.Status != model.AssetStatusUnderMaintenance {
		t.Errorf("status = %s, want UNDER_MAINTENANCE", updated.Status)
	}
	if len(updated.StatusHistory) != len(asset.StatusHistory)+1 {
		t.Fatalf("history grew by %d events, want exactly 1", len(updated.StatusHistory)-len(asset.StatusHistory))
	}
	event := updated.StatusHistory[len(updated.StatusHistory)-1]
	if event.PreviousStatus != "ACTIVE" || event.NewStatus != "UNDER_MAINTENANCE" {
		t.Errorf("event records %s -> %s, want ACTIVE -> UNDER_MAINTENANCE", event.PreviousStatus, event.NewStatus)
	}
	if event.ActorID != "user-7" || event.Notes != "kernel patching" {
		t.Errorf("event actor/notes = %q/%q", event.ActorID, event.Notes)
	}
	if !event.OccurredAt.Equal(now) {
		t.Errorf("event occurred_at = %s, want %s", event.OccurredAt, now)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %s, want %s", updated.UpdatedAt, now)
	}
}

func TestTransitionAssetDoesNotMutateSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	asset := *model.NewAsset()

	seeded, err := TransitionAsset(asset, Request{Status: "INACTIVE", ActorID: "a"}, now)
	if err != nil {
		t.Fatalf("seed transition: %v", err)
	}
	historyLen := len(seeded.StatusHistory)

	// Two independent transitions computed from the same snapshot, as a
	// caller retrying after a write conflict would do.
	first, err := TransitionAsset(seeded, Request{Status: "ACTIVE", ActorID: "b"}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	second, err := TransitionAsset(seeded, Request{Status: "DECOMMISSIONED", ActorID: "c"}, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}

	if seeded.Status != model.AssetStatusInactive || len(seeded.StatusHistory) != historyLen {
		t.Error("snapshot was mutated by a transition")
	}
	if got := first.StatusHistory[historyLen].NewStatus; got != "ACTIVE" {
		t.Errorf("first result's appended event = %s, clobbered by the second transition", got)
	}
	if got := second.StatusHistory[historyLen].NewStatus; got != "DECOMMISSIONED" {
		t.Errorf("second result's appended event = %s", got)
	}
}

func TestDecommissionedAssetStaysDecommissioned(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	asset := *model.NewAsset()

	gone, err := TransitionAsset(asset, Request{Status: "DECOMMISSIONED", ActorID: "ops"}, now)
	if err != nil {
		t.Fatalf("decommission: %v", err)
	}

	_, err = TransitionAsset(gone, Request{Status: "ACTIVE", ActorID: "ops"}, now.Add(time.Hour))
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "terminal") {
		t.Errorf("reason %q should mention the status is terminal", invalid.Reason)
	}
	if invalid.Current != "DECOMMISSIONED" || invalid.Requested != "ACTIVE" {
		t.Errorf("error carries %s -> %s", invalid.Current, invalid.Requested)
	}
	if gone.Status != model.AssetStatusDecommissioned || len(gone.StatusHistory) != 1 {
		t.Error("rejected transition altered the entity")
	}

	// Retrying the same rejected request fails the same way.
	_, err = TransitionAsset(gone, Request{Status: "ACTIVE", ActorID: "ops"}, now.Add(2*time.Hour))
	var again *InvalidTransitionError
	if !errors.As(err, &again) {
		t.Fatalf("retry: expected *InvalidTransitionError, got %v", err)
	}
	if again.Reason != invalid.Reason {
		t.Errorf("retry reason %q differs from %q", again.Reason, invalid.Reason)
	}
}

func TestHistoryChainsAcrossTransitions(t *testing.T) {
	start := time.Date(2025, 4, 7, 8, 0, 0, 0, time.UTC)
	current := *model.NewVulnerability()
	steps := []string{"CONFIRMED", "OPEN", "CONFIRMED", "RESOLVED", "OPEN"}
	for i, status := range steps {
		next, err := TransitionVulnerability(current, Request{Status: status, ActorID: "analyst"}, start.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, status, err)
		}
		current = next
	}

	if len(current.StatusHistory) != len(steps) {
		t.Fatalf("history has %d events, want %d", len(current.StatusHistory), len(steps))
	}
	if current.StatusHistory[0].PreviousStatus != "OPEN" {
		t.Errorf("first event starts from %s, want the initial OPEN", current.StatusHistory[0].PreviousStatus)
	}
	for i := 0; i+1 < len(current.StatusHistory); i++ {
		a, b := current.StatusHistory[i], current.StatusHistory[i+1]
		if a.NewStatus != b.PreviousStatus {
			t.Errorf("history break at %d: event ends on %s, next starts from %s", i, a.NewStatus, b.PreviousStatus)
		}
		if b.OccurredAt.Before(a.OccurredAt) {
			t.Errorf("history timestamps go backwards at %d", i)
		}
	}
	if got := model.LastStatus(current.StatusHistory, "OPEN"); got != string(current.Status) {
		t.Errorf("status %s does not match last event %s", current.Status, got)
	}
}

func TestClockStepBackwardsKeepsHistoryMonotonic(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	asset := *model.NewAsset()

	first, err := TransitionAsset(asset, Request{Status: "INACTIVE"}, base)
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	second, err := TransitionAsset(first, Request{Status: "ACTIVE"}, base.Add(-2*time.Second))
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}

	events := second.StatusHistory
	if events[1].OccurredAt.Before(events[0].OccurredAt) {
		t.Errorf("occurred_at went backwards: %s then %s", events[0].OccurredAt, events[1].OccurredAt)
	}
	if !events[1].OccurredAt.Equal(events[0].OccurredAt) {
		t.Errorf("occurred_at = %s, want clamp to the previous event's %s", events[1].OccurredAt, events[0].OccurredAt)
	}
}

func TestTransitionVulnerabilitySameStatusRejected(t *testing.T) {
	vulnerability := *model.NewVulnerability()
	_, err := TransitionVulnerability(vulnerability, Request{Status: "OPEN", ActorID: "analyst"}, time.Now())
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidTransitionError, got %v", err)
	}
	if !strings.Contains(invalid.Reason, "no change") {
		t.Errorf("reason %q should mention there is no change", invalid.Reason)
	}
}
