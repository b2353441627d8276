// Package imports reconciles normalized scanner exports against the asset,
// vulnerability and finding collections. Both the REST endpoint and the Kafka
// scan submission consumer run through ProcessScanImport.
package imports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/google/uuid"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	findingevents "github.com/iBuildiPawn/OSS-CYOPS-sub000/events/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/lifecycle"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

const transitionRetries = 3

// ProcessScanImport runs one reconciliation pass over a scan document and
// records the run in the scan_import collection. Every finding status change
// goes through the lifecycle core; nothing writes status directly.
func ProcessScanImport(ctx context.Context, db database.DBConnection, doc model.ScanDocument, actorID string) (*model.ScanImport, error) {
	if doc.Source == "" {
		return nil, fmt.Errorf("scan document is missing source")
	}

	policy := LoadImportPolicyFromEnv()

	now := time.Now().UTC()
	seenAt := now
	if doc.StartedAt != nil {
		seenAt = doc.StartedAt.UTC()
	}

	run := model.ScanImport{
		ImportID:  uuid.New().String(),
		Source:    doc.Source,
		ScanName:  doc.ScanName,
		ActorID:   actorID,
		Status:    model.ScanImportProcessing,
		ObjType:   "ScanImport",
		StartedAt: now,
	}
	meta, err := db.Collections["scan_import"].CreateDocument(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to record import run: %w", err)
	}
	run.Key = meta.Key

	fmt.Printf("Processing %s scan import %s with %d hosts\n", doc.Source, run.ImportID, len(doc.Hosts))

	counts := model.ScanImportCounts{}
	for _, host := range doc.Hosts {
		if err := reconcileHost(ctx, db, policy, doc, host, seenAt, &counts); err != nil {
			return failImportRun(ctx, db, &run, counts, err)
		}
	}

	finished := time.Now().UTC()
	run.Status = model.ScanImportCompleted
	run.Counts = counts
	run.FinishedAt = &finished
	if _, err := db.Collections["scan_import"].UpdateDocument(ctx, run.Key, map[string]interface{}{
		"status":      run.Status,
		"counts":      run.Counts,
		"finished_at": run.FinishedAt,
	}); err != nil {
		return &run, fmt.Errorf("failed to finalize import run: %w", err)
	}

	if err := util.SaveLastImportRun(db, doc.Source, seenAt); err != nil {
		fmt.Printf("Warning: Failed to record last import time for %s: %v\n", doc.Source, err)
	}

	fmt.Printf("Completed %s scan import %s: %d findings created, %d seen, %d reopened\n",
		doc.Source, run.ImportID, counts.FindingsCreated, counts.FindingsSeen, counts.FindingsReopened)
	return &run, nil
}

func failImportRun(ctx context.Context, db database.DBConnection, run *model.ScanImport, counts model.ScanImportCounts, cause error) (*model.ScanImport, error) {
	finished := time.Now().UTC()
	run.Status = model.ScanImportFailed
	run.Error = cause.Error()
	run.Counts = counts
	run.FinishedAt = &finished
	if _, err := db.Collections["scan_import"].UpdateDocument(ctx, run.Key, map[string]interface{}{
		"status":      run.Status,
		"error":       run.Error,
		"counts":      run.Counts,
		"finished_at": run.FinishedAt,
	}); err != nil {
		fmt.Printf("Warning: Failed to mark import run %s as failed: %v\n", run.ImportID, err)
	}
	return run, cause
}

func reconcileHost(ctx context.Context, db database.DBConnection, policy ImportPolicy, doc model.ScanDocument, host model.ScanHost, seenAt time.Time, counts *model.ScanImportCounts) error {
	assetKey, err := upsertAsset(ctx, db, host, seenAt, counts)
	if err != nil {
		return err
	}
	if assetKey == "" {
		fmt.Printf("Warning: Skipping host with no hostname or IP address (%d items)\n", len(host.Items))
		counts.ItemsSkipped += len(host.Items)
		return nil
	}

	seenFindings := map[string]bool{}
	for _, item := range host.Items {
		findingKey, err := applyItem(ctx, db, policy, doc, assetKey, item, seenAt, counts)
		if err != nil {
			return err
		}
		if findingKey != "" {
			seenFindings[findingKey] = true
		}
	}

	if policy.AutoCloseMissing {
		if err := closeMissingFindings(ctx, db, doc, assetKey, seenFindings, counts); err != nil {
			return err
		}
	}
	return nil
}

func upsertAsset(ctx context.Context, db database.DBConnection, host model.ScanHost, seenAt time.Time, counts *model.ScanImportCounts) (string, error) {
	// Build the identity through the same normalization the REST layer uses
	// so scan-created and hand-created assets dedup against each other.
	asset := model.NewAsset()
	asset.Hostname = host.Hostname
	asset.IPAddress = host.IPAddress
	asset.NormalizeIdentity()
	if asset.Hostname == "" && asset.IPAddress == "" {
		return "", nil
	}

	assetKey, err := database.FindAssetByIdentity(ctx, db.Database, asset.Hostname, asset.IPAddress)
	if err != nil {
		return "", fmt.Errorf("failed to look up asset %s: %w", host.Hostname, err)
	}

	now := time.Now().UTC()

	if assetKey == "" {
		asset.OperatingSystem = host.OperatingSystem
		asset.Environment = host.Environment
		if t := model.AssetType(host.AssetType); t.IsValid() {
			asset.AssetType = t
		}
		asset.FirstSeenAt = &seenAt
		asset.LastSeenAt = &seenAt
		asset.CreatedAt = now
		asset.UpdatedAt = now

		meta, err := db.Collections["asset"].CreateDocument(ctx, asset)
		if err != nil {
			return "", fmt.Errorf("failed to create asset %s: %w", host.Hostname, err)
		}
		counts.AssetsCreated++
		return meta.Key, nil
	}

	update := map[string]interface{}{
		"last_seen_at": seenAt,
		"updated_at":   now,
	}
	if host.OperatingSystem != "" {
		update["operating_system"] = host.OperatingSystem
	}
	if _, err := db.Collections["asset"].UpdateDocument(ctx, assetKey, update); err != nil {
		return "", fmt.Errorf("failed to touch asset %s: %w", assetKey, err)
	}
	counts.AssetsSeen++
	return assetKey, nil
}

func applyItem(ctx context.Context, db database.DBConnection, policy ImportPolicy, doc model.ScanDocument, assetKey string, item model.ScanItem, seenAt time.Time, counts *model.ScanImportCounts) (string, error) {
	if item.PluginName == "" && item.CveID == "" {
		counts.ItemsSkipped++
		return "", nil
	}

	severity := severityForItem(policy, item.PluginID, item.CVSSVector, item.Severity)
	if belowFloor(policy, severity) {
		counts.ItemsSkipped++
		return "", nil
	}

	vulnKey, vulnTitle, err := upsertVulnerability(ctx, db, policy, doc, item, severity, counts)
	if err != nil {
		return "", err
	}

	findingKey, err := database.FindFindingByInstance(ctx, db.Database, assetKey, vulnKey, item.Port, item.Protocol)
	if err != nil {
		return "", fmt.Errorf("failed to look up finding for %s: %w", vulnTitle, err)
	}

	now := time.Now().UTC()
	reopened := false

	if findingKey == "" {
		finding := model.NewFinding()
		finding.AssetKey = assetKey
		finding.VulnerabilityKey = vulnKey
		finding.Title = vulnTitle
		finding.Severity = severity
		finding.Port = item.Port
		finding.Protocol = item.Protocol
		finding.Evidence = item.Evidence
		finding.Remediation = item.Remediation
		finding.InstalledVersion = item.InstalledVersion
		finding.PackagePURL = item.PackagePURL
		finding.FirstSeenAt = &seenAt
		finding.LastSeenAt = &seenAt
		finding.CreatedAt = now
		finding.UpdatedAt = now

		meta, err := db.Collections["finding"].CreateDocument(ctx, finding)
		if err != nil {
			return "", fmt.Errorf("failed to create finding for %s: %w", vulnTitle, err)
		}
		findingKey = meta.Key
		counts.FindingsCreated++
	} else {
		update := map[string]interface{}{
			"last_seen_at": seenAt,
			"severity":     severity,
			"updated_at":   now,
		}
		if item.Evidence != "" {
			update["evidence"] = item.Evidence
		}
		if item.InstalledVersion != "" {
			update["installed_version"] = item.InstalledVersion
		}
		if _, err := db.Collections["finding"].UpdateDocument(ctx, findingKey, update); err != nil {
			return "", fmt.Errorf("failed to touch finding %s: %w", findingKey, err)
		}

		var finding model.Finding
		if _, err := database.ReadDocumentRev(ctx, db, "finding", findingKey, &finding); err != nil {
			return "", err
		}
		switch finding.Status {
		case model.FindingStatusFixed, model.FindingStatusVerified:
			note := "reappeared in " + doc.Source + " scan"
			if doc.ScanName != "" {
				note += " " + doc.ScanName
			}
			if _, err := applyScanTransition(ctx, db, findingKey, lifecycle.FindingRequest{
				Request: lifecycle.Request{Status: model.FindingStatusOpen.String(), Notes: note},
			}); err != nil {
				return "", fmt.Errorf("failed to reopen finding %s: %w", findingKey, err)
			}
			counts.FindingsReopened++
			reopened = true
		default:
			counts.FindingsSeen++
		}
	}

	if !reopened && policy.AutoFixOnVersionEvidence && versionEvidenceFixed(item) {
		if err := autoFixOnEvidence(ctx, db, findingKey, item, counts); err != nil {
			return "", err
		}
	}

	return findingKey, nil
}

func upsertVulnerability(ctx context.Context, db database.DBConnection, policy ImportPolicy, doc model.ScanDocument, item model.ScanItem, severity string, counts *model.ScanImportCounts) (string, string, error) {
	var vulnKey string
	var err error
	if item.CveID != "" {
		vulnKey, err = database.FindVulnerabilityByCVE(ctx, db.Database, item.CveID)
	} else {
		vulnKey, err = database.FindVulnerabilityByPlugin(ctx, db.Database, doc.Source, item.PluginID)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to look up vulnerability for plugin %s: %w", item.PluginID, err)
	}

	title := item.PluginName
	if title == "" {
		title = item.CveID
	}
	now := time.Now().UTC()

	if vulnKey == "" {
		vulnerability := model.NewVulnerability()
		vulnerability.Title = title
		vulnerability.Description = item.Description
		vulnerability.CveID = item.CveID
		vulnerability.CweID = item.CweID
		vulnerability.Severity = severity
		vulnerability.CVSSVector = item.CVSSVector
		vulnerability.Scanner = doc.Source
		vulnerability.PluginID = item.PluginID
		vulnerability.Remediation = item.Remediation
		vulnerability.References = item.References
		vulnerability.CreatedAt = now
		vulnerability.UpdatedAt = now
		vulnerability.EnrichScore()
		if override, ok := policy.SeverityOverrides[item.PluginID]; ok {
			vulnerability.Severity = override
		}

		meta, err := db.Collections["vulnerability"].CreateDocument(ctx, vulnerability)
		if err != nil {
			return "", "", fmt.Errorf("failed to create vulnerability %s: %w", title, err)
		}
		counts.VulnerabilitiesCreated++
		return meta.Key, title, nil
	}

	update := map[string]interface{}{
		"updated_at": now,
	}
	if item.CVSSVector != "" {
		refreshed := model.Vulnerability{CVSSVector: item.CVSSVector, Severity: severity}
		refreshed.EnrichScore()
		if override, ok := policy.SeverityOverrides[item.PluginID]; ok {
			refreshed.Severity = override
		}
		update["cvss_vector"] = refreshed.CVSSVector
		update["cvss_base_score"] = refreshed.CVSSBaseScore
		update["severity"] = refreshed.Severity
	}
	if item.Remediation != "" {
		update["remediation"] = item.Remediation
	}
	if item.References != nil {
		update["references"] = item.References
	}
	if _, err := db.Collections["vulnerability"].UpdateDocument(ctx, vulnKey, update); err != nil {
		return "", "", fmt.Errorf("failed to refresh vulnerability %s: %w", vulnKey, err)
	}
	counts.VulnerabilitiesUpdated++
	return vulnKey, title, nil
}

// versionEvidenceFixed reports whether the item's package evidence proves the
// finding was remediated: an installed version at or above the fixed version,
// compared with the parser for the package's PURL type.
func versionEvidenceFixed(item model.ScanItem) bool {
	if item.InstalledVersion == "" || item.FixedVersion == "" {
		return false
	}
	purlType := ""
	if item.PackagePURL != "" {
		if parsed, err := util.ParsePURL(item.PackagePURL); err == nil {
			purlType = parsed.Type
		}
	}
	return util.VersionAtLeast(purlType, item.InstalledVersion, item.FixedVersion)
}

func autoFixOnEvidence(ctx context.Context, db database.DBConnection, findingKey string, item model.ScanItem, counts *model.ScanImportCounts) error {
	var finding model.Finding
	if _, err := database.ReadDocumentRev(ctx, db, "finding", findingKey, &finding); err != nil {
		return err
	}
	switch finding.Status {
	case model.FindingStatusOpen, model.FindingStatusMitigated:
	default:
		return nil
	}

	fixNotes := fmt.Sprintf("Installed version %s is at or above fixed version %s", item.InstalledVersion, item.FixedVersion)
	if _, err := applyScanTransition(ctx, db, findingKey, lifecycle.FindingRequest{
		Request:  lifecycle.Request{Status: model.FindingStatusFixed.String()},
		FixNotes: fixNotes,
	}); err != nil {
		return fmt.Errorf("failed to auto-fix finding %s: %w", findingKey, err)
	}
	counts.FindingsAutoFixed++
	return nil
}

// closeMissingFindings marks OPEN and MITIGATED findings FIXED when a scan of
// their asset no longer reports them. Only findings whose vulnerability came
// from the same scanner are touched; manually recorded findings stay open.
func closeMissingFindings(ctx context.Context, db database.DBConnection, doc model.ScanDocument, assetKey string, seenFindings map[string]bool, counts *model.ScanImportCounts) error {
	query := `
		FOR f IN finding
			FILTER f.asset_key == @asset
			FILTER f.status IN ["OPEN", "MITIGATED"]
			FOR v IN vulnerability
				FILTER v._key == f.vulnerability_key
				FILTER v.scanner == @scanner
				RETURN f._key
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"asset":   assetKey,
			"scanner": doc.Source,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to query findings for auto-close: %w", err)
	}
	defer cursor.Close()

	candidates := []string{}
	for cursor.HasMore() {
		var key string
		if _, err := cursor.ReadDocument(ctx, &key); err != nil {
			continue
		}
		if !seenFindings[key] {
			candidates = append(candidates, key)
		}
	}

	fixNotes := "No longer detected by " + doc.Source + " scan"
	if doc.ScanName != "" {
		fixNotes += " " + doc.ScanName
	}
	for _, key := range candidates {
		if _, err := applyScanTransition(ctx, db, key, lifecycle.FindingRequest{
			Request:  lifecycle.Request{Status: model.FindingStatusFixed.String()},
			FixNotes: fixNotes,
		}); err != nil {
			return fmt.Errorf("failed to auto-close finding %s: %w", key, err)
		}
		counts.FindingsAutoClosed++
	}
	return nil
}

// applyScanTransition runs a lifecycle transition with the system actor,
// retrying from a fresh snapshot on revision conflicts.
func applyScanTransition(ctx context.Context, db database.DBConnection, key string, req lifecycle.FindingRequest) (*model.Finding, error) {
	for attempt := 0; ; attempt++ {
		var finding model.Finding
		rev, err := database.ReadDocumentRev(ctx, db, "finding", key, &finding)
		if err != nil {
			return nil, err
		}

		updated, err := lifecycle.TransitionFinding(finding, req, time.Now().UTC())
		if err != nil {
			return nil, err
		}

		if _, err := database.ReplaceDocumentRevChecked(ctx, db, "finding", key, rev, updated); err != nil {
			if errors.Is(err, database.ErrStaleEntity) && attempt < transitionRetries {
				continue
			}
			return nil, err
		}

		change := updated.StatusHistory[len(updated.StatusHistory)-1]
		if err := findingevents.PublishStatusChanged(ctx, updated, change); err != nil {
			fmt.Printf("Warning: Failed to publish status event for finding %s: %v\n", key, err)
		}
		return &updated, nil
	}
}
