package model

import "testing"

func TestParseAssetStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    AssetStatus
		wantErr bool
	}{
		{"ACTIVE", AssetStatusActive, false},
		{"active", AssetStatusActive, false},
		{" under_maintenance ", AssetStatusUnderMaintenance, false},
		{"DECOMMISSIONED", AssetStatusDecommissioned, false},
		{"RETIRED", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAssetStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAssetStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAssetStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllAssetStatusesAreValid(t *testing.T) {
	for _, status := range AllAssetStatuses() {
		if !status.IsValid() {
			t.Errorf("AllAssetStatuses returned invalid status %q", status)
		}
	}
	if AssetStatus("RETIRED").IsValid() {
		t.Error("unknown status RETIRED reported as valid")
	}
}

func TestAssetStatusDisplayName(t *testing.T) {
	if got := AssetStatusUnderMaintenance.DisplayName(); got != "Under Maintenance" {
		t.Errorf("DisplayName = %q, want Under Maintenance", got)
	}
	// Unknown values pass through untouched.
	if got := AssetStatus("WEIRD").DisplayName(); got != "WEIRD" {
		t.Errorf("DisplayName for unknown status = %q, want WEIRD", got)
	}
}

func TestAssetTypeIsValid(t *testing.T) {
	valid := []AssetType{
		AssetTypeServer, AssetTypeWorkstation, AssetTypeNetworkDevice,
		AssetTypeWebApplication, AssetTypeDatabase, AssetTypeCloudResource,
	}
	for _, at := range valid {
		if !at.IsValid() {
			t.Errorf("asset type %q should be valid", at)
		}
	}
	if AssetType("mainframe").IsValid() {
		t.Error("unknown asset type reported as valid")
	}
	if AssetType("SERVER").IsValid() {
		t.Error("asset types are lowercase; SERVER should not validate")
	}
}

func TestNewAssetDefaults(t *testing.T) {
	a := NewAsset()
	if a.ObjType != "Asset" {
		t.Errorf("ObjType = %q, want Asset", a.ObjType)
	}
	if a.Status != AssetStatusActive {
		t.Errorf("Status = %q, want ACTIVE", a.Status)
	}
	if a.StatusHistory == nil || len(a.StatusHistory) != 0 {
		t.Errorf("StatusHistory = %v, want empty non-nil slice", a.StatusHistory)
	}
	if a.Tags == nil {
		t.Error("Tags should default to an empty slice, not nil")
	}
}

func TestNormalizeIdentity(t *testing.T) {
	a := &Asset{
		Hostname:  "Web01.Example.COM.",
		IPAddress: " 10.0.0.5 ",
		Tags:      []string{"Prod", "prod ", "PCI"},
	}
	a.NormalizeIdentity()

	if a.Hostname != "web01.example.com" {
		t.Errorf("Hostname = %q, want web01.example.com", a.Hostname)
	}
	if a.Domain != "example.com" {
		t.Errorf("Domain = %q, want example.com", a.Domain)
	}
	if a.IPAddress != "10.0.0.5" {
		t.Errorf("IPAddress = %q, want 10.0.0.5", a.IPAddress)
	}
	if len(a.Tags) != 2 || a.Tags[0] != "prod" || a.Tags[1] != "pci" {
		t.Errorf("Tags = %v, want [prod pci]", a.Tags)
	}
	if a.Name != "web01.example.com" {
		t.Errorf("Name = %q, want hostname fallback", a.Name)
	}
}

func TestNormalizeIdentityNameFallsBackToIP(t *testing.T) {
	a := &Asset{IPAddress: "10.0.0.5"}
	a.NormalizeIdentity()
	if a.Name != "10.0.0.5" {
		t.Errorf("Name = %q, want IP fallback", a.Name)
	}
}

func TestNormalizeIdentityKeepsExplicitName(t *testing.T) {
	a := &Asset{Name: "edge gateway", Hostname: "gw01.example.com"}
	a.NormalizeIdentity()
	if a.Name != "edge gateway" {
		t.Errorf("Name = %q, explicit names must survive normalization", a.Name)
	}
}

func TestAssetDedupKeyIdentity(t *testing.T) {
	a := &Asset{Hostname: "Web01.Example.com", IPAddress: "10.0.0.5"}
	b := &Asset{Hostname: "web01.example.com.", IPAddress: "10.0.0.5"}
	a.NormalizeIdentity()
	b.NormalizeIdentity()
	if a.DedupKey() != b.DedupKey() {
		t.Errorf("dedup keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}
}
