package util

import "testing"

func TestNormalizeHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Web01.Example.COM.", "web01.example.com"},
		{" host ", "host"},
		{"db01", "db01"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHostname(tt.in); got != tt.want {
			t.Errorf("NormalizeHostname(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHostname(t *testing.T) {
	tests := []struct {
		in   string
		want HostIdentity
	}{
		{"web01.example.com", HostIdentity{Hostname: "web01", Domain: "example.com", FQDN: "web01.example.com"}},
		{"Web01.Example.COM.", HostIdentity{Hostname: "web01", Domain: "example.com", FQDN: "web01.example.com"}},
		{"web01", HostIdentity{Hostname: "web01", FQDN: "web01"}},
		{"", HostIdentity{}},
	}
	for _, tt := range tests {
		if got := ParseHostname(tt.in); got != tt.want {
			t.Errorf("ParseHostname(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAssetDedupKey(t *testing.T) {
	if got := AssetDedupKey("Web01.example.com.", " 10.0.0.5 "); got != "web01.example.com|10.0.0.5" {
		t.Errorf("AssetDedupKey = %q, want %q", got, "web01.example.com|10.0.0.5")
	}

	// Dedup keys must be stable across scanner casing differences.
	a := AssetDedupKey("WEB01.EXAMPLE.COM", "10.0.0.5")
	b := AssetDedupKey("web01.example.com.", "10.0.0.5")
	if a != b {
		t.Errorf("dedup keys differ for the same host: %q vs %q", a, b)
	}
}
