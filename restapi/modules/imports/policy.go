package imports

import (
	"fmt"
	"os"
	"strings"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
	"gopkg.in/yaml.v2"
)

// ImportPolicy controls how scan reconciliation treats incoming items and
// previously recorded findings.
type ImportPolicy struct {
	// MinSeverity drops items rated below this floor. "NONE" keeps everything.
	MinSeverity string `yaml:"min_severity"`

	// AutoCloseMissing marks OPEN and MITIGATED findings FIXED when a scan of
	// their asset no longer reports them.
	AutoCloseMissing bool `yaml:"auto_close_missing"`

	// AutoFixOnVersionEvidence marks findings FIXED when the scanner reports
	// an installed version at or above the fixed version.
	AutoFixOnVersionEvidence bool `yaml:"auto_fix_on_version_evidence"`

	// SeverityOverrides forces a severity rating for specific plugin IDs,
	// overriding both the CVSS-derived rating and the scanner's 0-4 scale.
	SeverityOverrides map[string]string `yaml:"severity_overrides,omitempty"`
}

// DefaultImportPolicy is what applies when no policy file is configured.
func DefaultImportPolicy() ImportPolicy {
	return ImportPolicy{
		MinSeverity:              "NONE",
		AutoCloseMissing:         false,
		AutoFixOnVersionEvidence: true,
	}
}

// LoadImportPolicy reads and parses a policy YAML file.
func LoadImportPolicy(filepath string) (ImportPolicy, error) {
	policy := DefaultImportPolicy()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return policy, fmt.Errorf("failed to read import policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("failed to parse import policy: %w", err)
	}
	if err := validatePolicy(&policy); err != nil {
		return policy, err
	}
	return policy, nil
}

// LoadImportPolicyFromEnv loads the policy named by IMPORT_POLICY_PATH, or
// the defaults when the variable is unset. A broken policy file falls back to
// the defaults rather than blocking imports.
func LoadImportPolicyFromEnv() ImportPolicy {
	path := database.GetEnvDefault("IMPORT_POLICY_PATH", "")
	if path == "" {
		return DefaultImportPolicy()
	}
	policy, err := LoadImportPolicy(path)
	if err != nil {
		fmt.Printf("Warning: Ignoring import policy %s: %v\n", path, err)
		return DefaultImportPolicy()
	}
	return policy
}

func validatePolicy(policy *ImportPolicy) error {
	policy.MinSeverity = strings.ToUpper(strings.TrimSpace(policy.MinSeverity))
	if policy.MinSeverity == "" {
		policy.MinSeverity = "NONE"
	}
	if util.SeverityRank(policy.MinSeverity) == 0 {
		return fmt.Errorf("invalid min_severity: %s", policy.MinSeverity)
	}
	for pluginID, severity := range policy.SeverityOverrides {
		normalized := strings.ToUpper(strings.TrimSpace(severity))
		if util.SeverityRank(normalized) == 0 {
			return fmt.Errorf("invalid severity override for plugin %s: %s", pluginID, severity)
		}
		policy.SeverityOverrides[pluginID] = normalized
	}
	return nil
}

// severityForItem resolves the effective severity of a scan item: a plugin
// override wins, then the CVSS vector, then the scanner's 0-4 scale.
func severityForItem(policy ImportPolicy, pluginID, cvssVector string, scannerLevel int) string {
	if override, ok := policy.SeverityOverrides[pluginID]; ok {
		return override
	}
	if cvssVector != "" {
		if score := util.CalculateCVSSScore(cvssVector); score > 0 {
			return util.GetSeverityRating(score)
		}
	}
	return util.ScannerSeverityRating(scannerLevel)
}

// belowFloor reports whether a severity rating falls below the policy floor.
func belowFloor(policy ImportPolicy, severity string) bool {
	return util.SeverityRank(severity) < util.SeverityRank(policy.MinSeverity)
}
