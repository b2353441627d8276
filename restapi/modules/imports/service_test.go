package imports

import (
	"testing"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

func TestVersionEvidenceFixed(t *testing.T) {
	tests := []struct {
		name string
		item model.ScanItem
		want bool
	}{
		{
			name: "no installed version",
			item: model.ScanItem{FixedVersion: "2.0.0"},
			want: false,
		},
		{
			name: "no fixed version",
			item: model.ScanItem{InstalledVersion: "2.0.0"},
			want: false,
		},
		{
			name: "installed above fixed",
			item: model.ScanItem{InstalledVersion: "2.1.0", FixedVersion: "2.0.0"},
			want: true,
		},
		{
			name: "installed equals fixed",
			item: model.ScanItem{InstalledVersion: "2.0.0", FixedVersion: "2.0.0"},
			want: true,
		},
		{
			name: "installed below fixed",
			item: model.ScanItem{InstalledVersion: "1.9.9", FixedVersion: "2.0.0"},
			want: false,
		},
		{
			name: "npm prerelease below release",
			item: model.ScanItem{
				PackagePURL:      "pkg:npm/lodash",
				InstalledVersion: "1.0.0-alpha",
				FixedVersion:     "1.0.0",
			},
			want: false,
		},
		{
			name: "bad purl falls back to semver",
			item: model.ScanItem{
				PackagePURL:      "not-a-purl",
				InstalledVersion: "2.1.0",
				FixedVersion:     "2.0.0",
			},
			want: true,
		},
	}
	for _, tt := range tests {
		if got := versionEvidenceFixed(tt.item); got != tt.want {
			t.Errorf("%s: versionEvidenceFixed = %v, want %v", tt.name, got, tt.want)
		}
	}
}
