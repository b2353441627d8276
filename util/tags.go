// Package util provides utility functions for the application.
package util

import "strings"

// NormalizeTag ensures asset tags are always lowercase and trimmed
// Use this function whenever accepting tags from external sources
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes a slice of tags, dropping empties and duplicates
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	normalized := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		clean := NormalizeTag(tag)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		normalized = append(normalized, clean)
	}
	return normalized
}
