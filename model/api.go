// Package model - API types for combining models in API requests/responses
package model

import "time"

// StatusUpdateRequest asks for a generic status transition on an entity.
// ExpectedRev carries the revision the client last saw; when set, a
// concurrent edit turns into a 409 instead of silently losing the race.
type StatusUpdateRequest struct {
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	ExpectedRev string `json:"expected_rev,omitempty"`
}

// MarkFixedRequest asks for the FIXED transition on a finding
type MarkFixedRequest struct {
	FixNotes    string `json:"fix_notes"`
	Notes       string `json:"notes,omitempty"`
	ExpectedRev string `json:"expected_rev,omitempty"`
}

// MarkVerifiedRequest asks for the VERIFIED transition on a finding
type MarkVerifiedRequest struct {
	Notes       string `json:"notes,omitempty"`
	ExpectedRev string `json:"expected_rev,omitempty"`
}

// AcceptRiskRequest asks for the RISK_ACCEPTED transition on a finding
type AcceptRiskRequest struct {
	AcceptanceReason string     `json:"acceptance_reason"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ExpectedRev      string     `json:"expected_rev,omitempty"`
}

// ReopenRequest asks for the transition back to OPEN on a finding
type ReopenRequest struct {
	Notes       string `json:"notes,omitempty"`
	ExpectedRev string `json:"expected_rev,omitempty"`
}

// AllowedTransitions lists the statuses an entity can move to from where it is
type AllowedTransitions struct {
	EntityKind string   `json:"entity_kind"`
	Current    string   `json:"current"`
	Allowed    []string `json:"allowed"`
	Terminal   bool     `json:"terminal"`
}

// ScanDocument is the normalized scanner export accepted by the import
// endpoint and the scan submission topic. Vendor-specific conversion happens
// upstream; the backend only reconciles.
type ScanDocument struct {
	Source    string     `json:"source"`               // Scanner identity (e.g., "nessus").
	ScanName  string     `json:"scan_name,omitempty"`  // Scan name as configured in the scanner.
	StartedAt *time.Time `json:"started_at,omitempty"` // When the scan ran; defaults to the import time.
	Hosts     []ScanHost `json:"hosts"`
}

// ScanHost is one scanned host and everything reported on it
type ScanHost struct {
	Hostname        string     `json:"hostname"`
	IPAddress       string     `json:"ip_address,omitempty"`
	OperatingSystem string     `json:"operating_system,omitempty"`
	AssetType       string     `json:"asset_type,omitempty"`
	Environment     string     `json:"environment,omitempty"`
	Items           []ScanItem `json:"items"`
}

// ScanItem is one reported vulnerability observation on a host
type ScanItem struct {
	PluginID    string   `json:"plugin_id"`
	PluginName  string   `json:"plugin_name"`
	Severity    int      `json:"severity"` // 0-4 scanner scale
	CVSSVector  string   `json:"cvss_vector,omitempty"`
	CveID       string   `json:"cve_id,omitempty"`
	CweID       string   `json:"cwe_id,omitempty"`
	Port        int      `json:"port,omitempty"`
	Protocol    string   `json:"protocol,omitempty"`
	Description string   `json:"description,omitempty"`
	Evidence    string   `json:"plugin_output,omitempty"`
	Remediation string   `json:"solution,omitempty"`
	References  []string `json:"references,omitempty"`

	// Package evidence, present when the plugin identified the affected
	// package. Lets reconciliation auto-close findings once the installed
	// version reaches the fixed version.
	PackagePURL      string `json:"package_purl,omitempty"`
	InstalledVersion string `json:"installed_version,omitempty"`
	FixedVersion     string `json:"fixed_version,omitempty"`
}
