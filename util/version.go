// Package util provides utility functions for the backend.
//
//revive:disable-next-line:var-naming
package util

import (
	"log"
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/osv-scanner/pkg/models"
)

// CompareVersions compares two version strings with the parser appropriate for
// the package's PURL type: npm semantics for "npm", PEP 440 for "pypi", semver
// for everything else. When either side cannot be parsed the comparison falls
// back to plain string ordering rather than guessing.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareVersions(purlType, a, b string) int {
	a = CleanVersion(a)
	b = CleanVersion(b)

	switch strings.ToLower(purlType) {
	case "npm":
		av, errA := npm.NewVersion(a)
		bv, errB := npm.NewVersion(b)
		if errA == nil && errB == nil {
			switch {
			case av.LessThan(bv):
				return -1
			case av.GreaterThan(bv):
				return 1
			default:
				return 0
			}
		}
	case "pypi":
		av, errA := pep440.Parse(a)
		bv, errB := pep440.Parse(b)
		if errA == nil && errB == nil {
			switch {
			case av.LessThan(bv):
				return -1
			case av.GreaterThan(bv):
				return 1
			default:
				return 0
			}
		}
	default:
		av, errA := semver.NewVersion(a)
		bv, errB := semver.NewVersion(b)
		if errA == nil && errB == nil {
			return av.Compare(bv)
		}
	}

	return strings.Compare(a, b)
}

// VersionAtLeast reports whether version is at or above floor for the given
// PURL type. Used to decide whether scan evidence (installed >= fixed) proves
// a finding was remediated.
func VersionAtLeast(purlType, version, floor string) bool {
	if IsEmpty(version) || IsEmpty(floor) {
		return false
	}
	return CompareVersions(purlType, version, floor) >= 0
}

// rangeBounds collects the boundary events of an OSV range.
// Later events overwrite earlier ones, matching OSV's append-style encoding.
func rangeBounds(vrange models.Range) (introduced, fixed, lastAffected string) {
	for _, event := range vrange.Events {
		if event.Introduced != "" {
			introduced = event.Introduced
		}
		if event.Fixed != "" {
			fixed = event.Fixed
		}
		if event.LastAffected != "" {
			lastAffected = event.LastAffected
		}
	}
	return introduced, fixed, lastAffected
}

// versionInRange checks if a version falls within an OSV range.
// Requires both a lower and an upper boundary: incomplete range data cannot
// reliably classify a version, so it is treated as not affected to avoid
// false positives.
func versionInRange(purlType, version string, vrange models.Range) bool {
	introduced, fixed, lastAffected := rangeBounds(vrange)

	if introduced == "" || (fixed == "" && lastAffected == "") {
		log.Printf("WARNING: Incomplete range data for version %s (introduced=%q fixed=%q last_affected=%q)",
			version, introduced, fixed, lastAffected)
		return false
	}

	// "0" means "from the beginning of time" in the OSV spec
	if introduced != "0" && CompareVersions(purlType, version, introduced) < 0 {
		return false
	}
	if fixed != "" && CompareVersions(purlType, version, fixed) >= 0 {
		return false
	}
	if lastAffected != "" && CompareVersions(purlType, version, lastAffected) > 0 {
		return false
	}

	return true
}

// IsVersionAffected checks if a version is affected per OSV affected data.
// An exact match in the versions list hits first; otherwise SEMVER and
// ECOSYSTEM ranges are walked with ecosystem-appropriate comparison.
func IsVersionAffected(version string, affected models.Affected) bool {
	version = CleanVersion(version)

	for _, v := range affected.Versions {
		if version == CleanVersion(v) {
			return true
		}
	}

	purlType := EcosystemToPurlType(string(affected.Package.Ecosystem))
	for _, vrange := range affected.Ranges {
		if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
			continue
		}
		if versionInRange(purlType, version, vrange) {
			return true
		}
	}

	return false
}

// IsVersionAffectedAny checks if a version is affected by any of the provided affected ranges
// This is a convenience wrapper around IsVersionAffected for multiple affected entries
func IsVersionAffectedAny(version string, allAffected []models.Affected) bool {
	for _, affected := range allAffected {
		if IsVersionAffected(version, affected) {
			return true
		}
	}
	return false
}

// FixedVersionHint returns the fixed version(s) a remediation should target.
// The range containing currentVersion wins; when no range matches, every
// distinct fixed version across the affected entries is returned as a fallback.
func FixedVersionHint(currentVersion string, allAffected []models.Affected) []string {
	currentVersion = CleanVersion(currentVersion)

	for _, affected := range allAffected {
		purlType := EcosystemToPurlType(string(affected.Package.Ecosystem))
		for _, vrange := range affected.Ranges {
			if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
				continue
			}
			if !versionInRange(purlType, currentVersion, vrange) {
				continue
			}
			if _, fixed, _ := rangeBounds(vrange); fixed != "" {
				return []string{fixed}
			}
		}
	}

	var fixedVersions []string
	seen := make(map[string]bool)
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			if _, fixed, _ := rangeBounds(vrange); fixed != "" && !seen[fixed] {
				fixedVersions = append(fixedVersions, fixed)
				seen[fixed] = true
			}
		}
	}
	return fixedVersions
}
