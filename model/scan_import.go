// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import "time"

// Scan import run states
const (
	// ScanImportProcessing means the reconciliation run is still applying items.
	ScanImportProcessing = "processing"
	// ScanImportCompleted means the run finished and the counts are final.
	ScanImportCompleted = "completed"
	// ScanImportFailed means the run aborted; Error holds the cause.
	ScanImportFailed = "failed"
)

// ScanImportCounts summarizes what one reconciliation run did
type ScanImportCounts struct {
	AssetsCreated          int `json:"assets_created"`          // Hosts that had no matching asset and were created.
	AssetsSeen             int `json:"assets_seen"`             // Hosts matched to an existing asset.
	VulnerabilitiesCreated int `json:"vulnerabilities_created"` // Items that introduced a new vulnerability record.
	VulnerabilitiesUpdated int `json:"vulnerabilities_updated"` // Items that refreshed an existing vulnerability record.
	FindingsCreated        int `json:"findings_created"`        // New finding instances opened.
	FindingsSeen           int `json:"findings_seen"`           // Existing findings confirmed still present.
	FindingsReopened       int `json:"findings_reopened"`       // FIXED or VERIFIED findings that reappeared and were reopened.
	FindingsAutoFixed      int `json:"findings_auto_fixed"`     // Findings auto-marked FIXED on version evidence.
	FindingsAutoClosed     int `json:"findings_auto_closed"`    // Findings auto-marked FIXED because the scan no longer reports them.
	ItemsSkipped           int `json:"items_skipped"`           // Items dropped by the severity floor or bad data.
}

// ScanImport is the audit record of one scan reconciliation run
type ScanImport struct {
	Key      string `json:"_key,omitempty"`     // Unique identifier of the import run in the database.
	ImportID string `json:"import_id"`          // Stable UUID for correlating logs and events.
	Source   string `json:"source"`             // Scanner identity (e.g., "nessus").
	ScanName string `json:"scan_name,omitempty"` // Scan name as reported by the scanner.
	ActorID  string `json:"actor_id,omitempty"` // Actor who submitted the scan; empty for feed-driven imports.
	Status   string `json:"status"`             // processing, completed or failed.
	Error    string `json:"error,omitempty"`    // Failure cause when status is failed.
	ObjType  string `json:"objtype,omitempty"`  // The object type for database indexing (should be "ScanImport").

	Counts ScanImportCounts `json:"counts"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
