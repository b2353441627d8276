package model

import (
	"testing"
	"time"
)

func TestLastStatusEmptyHistory(t *testing.T) {
	if got := LastStatus(nil, "OPEN"); got != "OPEN" {
		t.Errorf("LastStatus(nil) = %q, want fallback OPEN", got)
	}
	if got := LastStatus([]StatusChangeEvent{}, "ACTIVE"); got != "ACTIVE" {
		t.Errorf("LastStatus(empty) = %q, want fallback ACTIVE", got)
	}
}

func TestLastStatusFollowsHistory(t *testing.T) {
	now := time.Now()
	history := []StatusChangeEvent{
		{PreviousStatus: "OPEN", NewStatus: "FIXED", OccurredAt: now},
		{PreviousStatus: "FIXED", NewStatus: "VERIFIED", OccurredAt: now.Add(time.Hour)},
	}
	if got := LastStatus(history, "OPEN"); got != "VERIFIED" {
		t.Errorf("LastStatus = %q, want VERIFIED", got)
	}
}
