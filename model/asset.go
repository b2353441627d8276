// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// AssetStatus represents the operational status of an asset
type AssetStatus string

const (
	// AssetStatusActive means the asset is in service and should be scanned and tracked.
	AssetStatusActive AssetStatus = "ACTIVE"
	// AssetStatusInactive means the asset is powered down or unreachable but still owned.
	AssetStatusInactive AssetStatus = "INACTIVE"
	// AssetStatusUnderMaintenance means the asset is temporarily out of service for planned work.
	AssetStatusUnderMaintenance AssetStatus = "UNDER_MAINTENANCE"
	// AssetStatusDecommissioned means the asset was permanently retired. Terminal.
	AssetStatusDecommissioned AssetStatus = "DECOMMISSIONED"
)

// IsValid checks whether the status is a known asset status
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusActive, AssetStatusInactive, AssetStatusUnderMaintenance, AssetStatusDecommissioned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s AssetStatus) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the status
func (s AssetStatus) DisplayName() string {
	switch s {
	case AssetStatusActive:
		return "Active"
	case AssetStatusInactive:
		return "Inactive"
	case AssetStatusUnderMaintenance:
		return "Under Maintenance"
	case AssetStatusDecommissioned:
		return "Decommissioned"
	default:
		return string(s)
	}
}

// ParseAssetStatus parses a string into an AssetStatus
func ParseAssetStatus(s string) (AssetStatus, error) {
	status := AssetStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid asset status: %s", s)
	}
	return status, nil
}

// AllAssetStatuses returns all valid asset statuses
func AllAssetStatuses() []AssetStatus {
	return []AssetStatus{
		AssetStatusActive,
		AssetStatusInactive,
		AssetStatusUnderMaintenance,
		AssetStatusDecommissioned,
	}
}

// AssetType represents the category of infrastructure an asset belongs to
type AssetType string

const (
	// AssetTypeServer represents a physical or virtual server.
	AssetTypeServer AssetType = "server"
	// AssetTypeWorkstation represents an end-user machine.
	AssetTypeWorkstation AssetType = "workstation"
	// AssetTypeNetworkDevice represents routers, switches, firewalls and similar gear.
	AssetTypeNetworkDevice AssetType = "network_device"
	// AssetTypeWebApplication represents a web application or service endpoint.
	AssetTypeWebApplication AssetType = "web_application"
	// AssetTypeDatabase represents a database server or managed database instance.
	AssetTypeDatabase AssetType = "database"
	// AssetTypeCloudResource represents a cloud-managed resource without a fixed host.
	AssetTypeCloudResource AssetType = "cloud_resource"
)

// IsValid checks whether the value is a known asset type
func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeServer, AssetTypeWorkstation, AssetTypeNetworkDevice,
		AssetTypeWebApplication, AssetTypeDatabase, AssetTypeCloudResource:
		return true
	default:
		return false
	}
}

// Asset represents a tracked piece of infrastructure findings attach to
type Asset struct {
	Key             string      `json:"_key,omitempty"`             // Unique identifier of the asset in the database.
	Name            string      `json:"name"`                       // Human-readable name of the asset.
	Hostname        string      `json:"hostname,omitempty"`         // Normalized hostname; part of the scan dedup identity.
	Domain          string      `json:"domain,omitempty"`           // Domain component parsed from the hostname.
	IPAddress       string      `json:"ip_address,omitempty"`       // IP address; part of the scan dedup identity.
	AssetType       AssetType   `json:"asset_type"`                 // The category of infrastructure (e.g., "server").
	Environment     string      `json:"environment,omitempty"`      // The environment designation (e.g., "staging", "production").
	OperatingSystem string      `json:"operating_system,omitempty"` // Operating system reported by scans or entered manually.
	OSVersion       string      `json:"os_version,omitempty"`       // Operating system version string.
	Owner           string      `json:"owner,omitempty"`            // Team or person responsible for the asset.
	Tags            []string    `json:"tags,omitempty"`             // Normalized free-form labels.
	ObjType         string      `json:"objtype,omitempty"`          // The object type for database indexing (should be "Asset").

	Status        AssetStatus         `json:"status"`         // Current operational status; always agrees with the last history entry.
	StatusHistory []StatusChangeEvent `json:"status_history"` // Append-only audit log of accepted status transitions.

	FirstSeenAt *time.Time `json:"first_seen_at,omitempty"` // First time a scan import reported this asset.
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`  // Most recent time a scan import reported this asset.
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewAsset creates a new Asset instance with default values
func NewAsset() *Asset {
	now := time.Now()
	return &Asset{
		ObjType:       "Asset",
		AssetType:     AssetTypeServer,
		Status:        AssetStatusActive,
		StatusHistory: []StatusChangeEvent{},
		Tags:          []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizeIdentity normalizes the hostname, derives the domain component and
// dedups the tags. Call before persisting anything accepted from a client or
// a scanner.
func (a *Asset) NormalizeIdentity() {
	identity := util.ParseHostname(a.Hostname)
	a.Hostname = identity.FQDN
	a.Domain = identity.Domain
	a.IPAddress = strings.TrimSpace(a.IPAddress)
	a.Tags = util.NormalizeTags(a.Tags)
	if a.Name == "" {
		a.Name = util.GetStringOrDefault(a.Hostname, a.IPAddress)
	}
}

// DedupKey returns the identity key scan reconciliation matches hosts on
func (a *Asset) DedupKey() string {
	return util.AssetDedupKey(a.Hostname, a.IPAddress)
}
