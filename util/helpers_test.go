package util

import "testing"

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.3", "1.2.3"},
		{"V3.0", "3.0"},
		{" 2.0.1 ", "2.0.1"},
		{"1.0", "1.0"},
		{"v", "v"},
		{"version", "version"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanVersion(tt.in); got != tt.want {
			t.Errorf("CleanVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEcosystemToPurlType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"npm", "npm"},
		{"PyPI", "pypi"},
		{"pypi", "pypi"},
		{"Go", "golang"},
		{"crates.io", "cargo"},
		{"Debian", "deb"},
		{"Ubuntu", "deb"},
		{"SomethingNew", "somethingnew"},
	}
	for _, tt := range tests {
		if got := EcosystemToPurlType(tt.in); got != tt.want {
			t.Errorf("EcosystemToPurlType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetBasePURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pkg:npm/lodash@4.17.20", "pkg:npm/lodash"},
		{"pkg:npm/lodash@4.17.20?arch=x64", "pkg:npm/lodash"},
		{"pkg:maven/org.apache.logging.log4j/log4j-core@2.14.0", "pkg:maven/org.apache.logging.log4j/log4j-core"},
	}
	for _, tt := range tests {
		got, err := GetBasePURL(tt.in)
		if err != nil {
			t.Fatalf("GetBasePURL(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("GetBasePURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := GetBasePURL("not-a-purl"); err == nil {
		t.Error("GetBasePURL should reject a malformed PURL")
	}
}

func TestGetBasePURLFromComponents(t *testing.T) {
	tests := []struct {
		ecosystem, namespace, name string
		want                       string
	}{
		{"npm", "", "lodash", "pkg:npm/lodash"},
		{"PyPI", "", "Django", "pkg:pypi/django"},
		{"Maven", "org.apache.logging.log4j", "log4j-core", "pkg:maven/org.apache.logging.log4j/log4j-core"},
	}
	for _, tt := range tests {
		if got := GetBasePURLFromComponents(tt.ecosystem, tt.namespace, tt.name); got != tt.want {
			t.Errorf("GetBasePURLFromComponents(%q, %q, %q) = %q, want %q",
				tt.ecosystem, tt.namespace, tt.name, got, tt.want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("") || !IsEmpty("   ") || !IsEmpty("\t\n") {
		t.Error("whitespace-only strings should be empty")
	}
	if IsEmpty("x") || IsEmpty(" x ") {
		t.Error("strings with content should not be empty")
	}
	if IsNotEmpty("") || !IsNotEmpty("x") {
		t.Error("IsNotEmpty should negate IsEmpty")
	}
}

func TestGetStringOrDefault(t *testing.T) {
	if got := GetStringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("GetStringOrDefault(\"\", fallback) = %q", got)
	}
	if got := GetStringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("GetStringOrDefault(value, fallback) = %q", got)
	}
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("CYOPS_TEST_ENV_VAR", "set")
	if got := GetEnvDefault("CYOPS_TEST_ENV_VAR", "default"); got != "set" {
		t.Errorf("GetEnvDefault with var set = %q, want set", got)
	}
	if got := GetEnvDefault("CYOPS_TEST_ENV_VAR_MISSING", "default"); got != "default" {
		t.Errorf("GetEnvDefault with var missing = %q, want default", got)
	}
}

func TestContains(t *testing.T) {
	set := []string{"a", "b"}
	if !Contains(set, "a") || Contains(set, "c") || Contains(nil, "a") {
		t.Error("Contains membership checks failed")
	}
}
