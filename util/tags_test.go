package util

import "testing"

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Prod ", "prod"},
		{"WEB-SERVER", "web-server"},
		{"pci", "pci"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTag(tt.in); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"Web", "web ", "DB", "", "  ", "db"})
	want := []string{"web", "db"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTags returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeTagsNil(t *testing.T) {
	got := NormalizeTags(nil)
	if got == nil {
		t.Fatal("NormalizeTags(nil) returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("NormalizeTags(nil) = %v, want empty slice", got)
	}
}
