// Package util provides utility functions for working with Package URLs (PURLs),
// version comparisons for remediation evidence, and extracting metadata from the environment.
//
//revive:disable-next-line:var-naming
package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/package-url/packageurl-go"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// IsNotEmpty checks if a string is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetStringOrDefault returns value or default if empty
func GetStringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// CleanVersion normalizes scanner-reported versions for comparison.
// Strips a leading "v" and surrounding whitespace; scanners disagree on both.
// Examples:
//   - "v1.2.3"  -> "1.2.3"
//   - " 2.0.1 " -> "2.0.1"
func CleanVersion(version string) string {
	version = strings.TrimSpace(version)
	if len(version) > 1 && (version[0] == 'v' || version[0] == 'V') && version[1] >= '0' && version[1] <= '9' {
		return version[1:]
	}
	return version
}

// EcosystemToPurlType converts an OSV/scanner ecosystem label to a PURL type
func EcosystemToPurlType(ecosystem string) string {
	mapping := map[string]string{
		"npm":        "npm",
		"PyPI":       "pypi",
		"Maven":      "maven",
		"Go":         "golang",
		"NuGet":      "nuget",
		"RubyGems":   "gem",
		"crates.io":  "cargo",
		"Packagist":  "composer",
		"Pub":        "pub",
		"CocoaPods":  "cocoapods",
		"Hex":        "hex",
		"Alpine":     "apk",
		"Wolfi":      "apk",
		"Chainguard": "apk",
		"Debian":     "deb",
		"Ubuntu":     "deb",
	}

	// Try exact match first
	if purlType, exists := mapping[ecosystem]; exists {
		return purlType
	}

	// Fallback: try case-insensitive
	for key, value := range mapping {
		if strings.EqualFold(key, ecosystem) {
			return value
		}
	}

	// Last resort: return lowercase ecosystem
	return strings.ToLower(ecosystem)
}

// ParsePURL parses a PURL string and returns the parsed PackageURL
func ParsePURL(purlStr string) (*packageurl.PackageURL, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// GetBasePURL strips version, qualifiers and subpath from a PURL so scan
// evidence for the same package dedups to one identity regardless of the
// installed version the scanner saw.
// Example: "pkg:npm/lodash@4.17.20?arch=x64" -> "pkg:npm/lodash"
func GetBasePURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	base := packageurl.PackageURL{
		Type:      EcosystemToPurlType(parsed.Type),
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
		// Version, Qualifiers, Subpath intentionally omitted
	}

	return strings.ToLower(base.ToString()), nil
}

// GetBasePURLFromComponents constructs a standardized base PURL from ecosystem and package name
// Example: ("npm", "", "lodash") -> "pkg:npm/lodash"
func GetBasePURLFromComponents(ecosystem, namespace, name string) string {
	purlType := EcosystemToPurlType(ecosystem)

	var basePurl string
	if namespace != "" {
		basePurl = fmt.Sprintf("pkg:%s/%s/%s", purlType, namespace, name)
	} else {
		basePurl = fmt.Sprintf("pkg:%s/%s", purlType, name)
	}

	return strings.ToLower(basePurl)
}
