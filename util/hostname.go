// Package util provides utility functions for the application.
package util

import "strings"

// HostIdentity holds the parsed components of an asset's network name
type HostIdentity struct {
	Hostname string
	Domain   string
	FQDN     string
}

// NormalizeHostname lowercases, trims and strips the trailing dot from a
// hostname. Use this function whenever accepting hostnames from external
// sources so dedup keys compare reliably across scanners.
func NormalizeHostname(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".")
}

// ParseHostname parses a hostname string into its components
// Format: <host>.<domain...>; a bare name has no domain component
func ParseHostname(name string) HostIdentity {
	fqdn := NormalizeHostname(name)
	if fqdn == "" {
		return HostIdentity{}
	}

	parts := strings.SplitN(fqdn, ".", 2)
	if len(parts) == 2 {
		return HostIdentity{
			Hostname: parts[0],
			Domain:   parts[1],
			FQDN:     fqdn,
		}
	}

	return HostIdentity{
		Hostname: fqdn,
		FQDN:     fqdn,
	}
}

// AssetDedupKey builds the identity key scan reconciliation uses to decide
// whether two host records are the same asset
func AssetDedupKey(hostname, ipAddress string) string {
	return NormalizeHostname(hostname) + "|" + strings.TrimSpace(ipAddress)
}
