package util

import "testing"

func TestCalculateCVSSScore(t *testing.T) {
	tests := []struct {
		vector string
		want   float64
	}{
		{"", 0},
		{"AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", 0},
		{"CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", 9.8},
		{"CVSS:3.0/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", 9.8},
		{"CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:L/A:N", 6.5},
		{"CVSS:3.1/garbage", 0},
		{"CVSS:2.0/AV:N/AC:L/Au:N/C:P/I:P/A:P", 0},
	}
	for _, tt := range tests {
		if got := CalculateCVSSScore(tt.vector); got != tt.want {
			t.Errorf("CalculateCVSSScore(%q) = %v, want %v", tt.vector, got, tt.want)
		}
	}
}

func TestCalculateCVSSScoreV4(t *testing.T) {
	vector := "CVSS:4.0/AV:N/AC:L/AT:N/PR:N/UI:N/VC:H/VI:H/VA:H/SC:N/SI:N/SA:N"
	score := CalculateCVSSScore(vector)
	if score <= 0 || score > 10 {
		t.Fatalf("CalculateCVSSScore(%q) = %v, want a score in (0, 10]", vector, score)
	}
	if rating := GetSeverityRating(score); rating != "CRITICAL" {
		t.Errorf("GetSeverityRating(%v) = %q, want CRITICAL", score, rating)
	}
}

func TestGetSeverityRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "NONE"},
		{0.1, "LOW"},
		{3.9, "LOW"},
		{4.0, "MEDIUM"},
		{6.9, "MEDIUM"},
		{7.0, "HIGH"},
		{8.9, "HIGH"},
		{9.0, "CRITICAL"},
		{9.8, "CRITICAL"},
		{10, "CRITICAL"},
	}
	for _, tt := range tests {
		if got := GetSeverityRating(tt.score); got != tt.want {
			t.Errorf("GetSeverityRating(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

// GetSeverityScore returns the lowest score of each band, so feeding it back
// through GetSeverityRating must land in the same band.
func TestSeverityScoreRoundTrip(t *testing.T) {
	for _, severity := range []string{"NONE", "LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		score := GetSeverityScore(severity)
		if got := GetSeverityRating(score); got != severity {
			t.Errorf("GetSeverityRating(GetSeverityScore(%q)) = %q, want %q", severity, got, severity)
		}
	}
}

func TestGetSeverityScoreNormalizesInput(t *testing.T) {
	if got := GetSeverityScore(" high "); got != 7.0 {
		t.Errorf("GetSeverityScore(\" high \") = %v, want 7.0", got)
	}
	if got := GetSeverityScore("bogus"); got != 0.0 {
		t.Errorf("GetSeverityScore(\"bogus\") = %v, want 0.0", got)
	}
}

func TestScannerSeverityRating(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "NONE"},
		{1, "LOW"},
		{2, "MEDIUM"},
		{3, "HIGH"},
		{4, "CRITICAL"},
		{5, "CRITICAL"},
	}
	for _, tt := range tests {
		if got := ScannerSeverityRating(tt.level); got != tt.want {
			t.Errorf("ScannerSeverityRating(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	ordered := []string{"NONE", "LOW", "MEDIUM", "HIGH", "CRITICAL"}
	for i := 1; i < len(ordered); i++ {
		lo, hi := ordered[i-1], ordered[i]
		if SeverityRank(lo) >= SeverityRank(hi) {
			t.Errorf("SeverityRank(%q) = %d, want less than SeverityRank(%q) = %d",
				lo, SeverityRank(lo), hi, SeverityRank(hi))
		}
	}
	if got := SeverityRank("bogus"); got != 0 {
		t.Errorf("SeverityRank(\"bogus\") = %d, want 0", got)
	}
	if got := SeverityRank(" critical "); got != 5 {
		t.Errorf("SeverityRank(\" critical \") = %d, want 5", got)
	}
}

// The scanner scale and the rank scale must stay aligned: level n maps to the
// rating ranked n+1.
func TestScannerScaleMatchesRank(t *testing.T) {
	for level := 0; level <= 4; level++ {
		rating := ScannerSeverityRating(level)
		if got := SeverityRank(rating); got != level+1 {
			t.Errorf("SeverityRank(ScannerSeverityRating(%d)) = %d, want %d", level, got, level+1)
		}
	}
}
