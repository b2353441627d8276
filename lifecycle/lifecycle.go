// Package lifecycle implements the status state machine shared by assets,
// vulnerabilities and findings: the per-kind transition tables, the validator,
// and the recorder that advances an entity and appends to its status history.
//
// Everything in this package is a pure function of its inputs. It never logs,
// never retries and never talks to storage; persistence and user-facing
// messaging belong to the calling layer. Recorders take entity values and
// return new values, so a caller holding a stale snapshot can simply re-fetch
// and call again after an optimistic-concurrency conflict.
package lifecycle

import (
	"fmt"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// EntityKind selects which transition table applies
type EntityKind string

const (
	// KindAsset selects the asset status table.
	KindAsset EntityKind = "asset"
	// KindVulnerability selects the vulnerability status table.
	KindVulnerability EntityKind = "vulnerability"
	// KindFinding selects the finding status table.
	KindFinding EntityKind = "finding"
)

// statusOrder fixes the declaration order of each kind's statuses so
// AllowedNextStatuses and Statuses return stable, UI-friendly output.
var statusOrder = map[EntityKind][]string{
	KindAsset: {
		string(model.AssetStatusActive),
		string(model.AssetStatusInactive),
		string(model.AssetStatusUnderMaintenance),
		string(model.AssetStatusDecommissioned),
	},
	KindVulnerability: {
		string(model.VulnerabilityStatusOpen),
		string(model.VulnerabilityStatusConfirmed),
		string(model.VulnerabilityStatusResolved),
		string(model.VulnerabilityStatusFalsePositive),
	},
	KindFinding: {
		string(model.FindingStatusOpen),
		string(model.FindingStatusMitigated),
		string(model.FindingStatusFixed),
		string(model.FindingStatusVerified),
		string(model.FindingStatusRiskAccepted),
		string(model.FindingStatusFalsePositive),
	},
}

// transitionTable is the full adjacency map per entity kind. It is static
// configuration: every status of a kind has an entry, terminal statuses map
// to an empty set, and re-opening is only possible where a row explicitly
// lists it. No self-transitions appear anywhere; a same-status request is a
// rejected no-op.
var transitionTable = map[EntityKind]map[string][]string{
	KindAsset: {
		string(model.AssetStatusActive): {
			string(model.AssetStatusInactive),
			string(model.AssetStatusUnderMaintenance),
			string(model.AssetStatusDecommissioned),
		},
		string(model.AssetStatusInactive): {
			string(model.AssetStatusActive),
			string(model.AssetStatusDecommissioned),
		},
		string(model.AssetStatusUnderMaintenance): {
			string(model.AssetStatusActive),
			string(model.AssetStatusInactive),
			string(model.AssetStatusDecommissioned),
		},
		// Decommissioning is irreversible.
		string(model.AssetStatusDecommissioned): {},
	},
	KindVulnerability: {
		string(model.VulnerabilityStatusOpen): {
			string(model.VulnerabilityStatusConfirmed),
			string(model.VulnerabilityStatusResolved),
			string(model.VulnerabilityStatusFalsePositive),
		},
		string(model.VulnerabilityStatusConfirmed): {
			string(model.VulnerabilityStatusOpen),
			string(model.VulnerabilityStatusResolved),
			string(model.VulnerabilityStatusFalsePositive),
		},
		// A resolved vulnerability can only come back by explicit reopening.
		string(model.VulnerabilityStatusResolved): {
			string(model.VulnerabilityStatusOpen),
		},
		string(model.VulnerabilityStatusFalsePositive): {},
	},
	KindFinding: {
		string(model.FindingStatusOpen): {
			string(model.FindingStatusMitigated),
			string(model.FindingStatusFixed),
			string(model.FindingStatusRiskAccepted),
			string(model.FindingStatusFalsePositive),
		},
		string(model.FindingStatusMitigated): {
			string(model.FindingStatusOpen),
			string(model.FindingStatusFixed),
			string(model.FindingStatusRiskAccepted),
			string(model.FindingStatusFalsePositive),
		},
		string(model.FindingStatusFixed): {
			string(model.FindingStatusOpen),
			string(model.FindingStatusVerified),
			string(model.FindingStatusRiskAccepted),
			string(model.FindingStatusFalsePositive),
		},
		string(model.FindingStatusVerified): {
			string(model.FindingStatusOpen),
			string(model.FindingStatusFalsePositive),
		},
		string(model.FindingStatusRiskAccepted): {
			string(model.FindingStatusOpen),
			string(model.FindingStatusFalsePositive),
		},
		string(model.FindingStatusFalsePositive): {},
	},
}

// Statuses returns every status of the kind in declaration order.
// Unknown kinds return nil.
func Statuses(kind EntityKind) []string {
	order, ok := statusOrder[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// AllowedNextStatuses returns the set of statuses reachable from current for
// the given kind, in declaration order. Terminal statuses return an empty
// slice. The result is a copy; callers may mutate it freely.
func AllowedNextStatuses(kind EntityKind, current string) []string {
	table, ok := transitionTable[kind]
	if !ok {
		return nil
	}
	next, ok := table[current]
	if !ok {
		return nil
	}
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether the status permits no further transitions
func IsTerminal(kind EntityKind, status string) bool {
	table, ok := transitionTable[kind]
	if !ok {
		return false
	}
	next, ok := table[status]
	return ok && len(next) == 0
}

// Decision is the validator's answer for one requested transition.
// Reason is set only when the transition is denied.
type Decision struct {
	Allowed bool
	Reason  string
}

// Validate decides whether a requested status change is legal for the kind
// and produces a human-readable reason when it is not. It has no side
// effects and is safe to call speculatively, e.g. to grey out UI options.
func Validate(kind EntityKind, current, requested string) Decision {
	table, ok := transitionTable[kind]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown entity kind %q", kind)}
	}

	next, ok := table[current]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown %s status %q", kind, current)}
	}

	if _, ok := table[requested]; !ok {
		return Decision{Reason: fmt.Sprintf("unknown %s status %q", kind, requested)}
	}

	if requested == current {
		return Decision{Reason: fmt.Sprintf("no change: status is already %s", current)}
	}

	if len(next) == 0 {
		return Decision{Reason: fmt.Sprintf("Cannot transition from %s: this status is terminal", current)}
	}

	for _, status := range next {
		if status == requested {
			return Decision{Allowed: true}
		}
	}

	return Decision{Reason: fmt.Sprintf("Cannot transition from %s to %s: not an allowed next status", current, requested)}
}
