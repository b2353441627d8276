// Package vulnerabilities implements the resolvers for vulnerability data.
package vulnerabilities

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/google/osv-scanner/pkg/models"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// ResolveTopVulnerabilities fetches the vulnerabilities with the widest open
// exposure, ranked by score then by how many findings are still open.
func ResolveTopVulnerabilities(db database.DBConnection, severity string, limit int) ([]map[string]interface{}, error) {
	ctx := context.Background()

	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		FOR v IN vulnerability
	`
	bindVars := map[string]interface{}{
		"limit": limit,
	}
	if severity != "" {
		query += `
			FILTER v.severity == @severity
		`
		bindVars["severity"] = severity
	}
	query += `
			LET openFindings = LENGTH(
				FOR f IN finding
					FILTER f.vulnerability_key == v._key
					FILTER f.status IN ["OPEN", "MITIGATED"]
					RETURN 1
			)
			LET totalFindings = LENGTH(
				FOR f IN finding
					FILTER f.vulnerability_key == v._key
					RETURN 1
			)
			LET affectedAssets = LENGTH(
				FOR f IN finding
					FILTER f.vulnerability_key == v._key
					FILTER f.status IN ["OPEN", "MITIGATED"]
					COLLECT assetKey = f.asset_key
					RETURN 1
			)
			FILTER openFindings > 0
			SORT v.cvss_base_score DESC, openFindings DESC
			LIMIT @limit
			RETURN {
				key: v._key,
				cve_id: v.cve_id,
				plugin_id: v.plugin_id,
				title: v.title,
				severity: v.severity,
				cvss_base_score: v.cvss_base_score,
				scanner: v.scanner,
				status: v.status,
				open_findings: openFindings,
				total_findings: totalFindings,
				affected_assets: affectedAssets,
				affected: v.affected
			}
	`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	type topVulnerabilityRow struct {
		Key            string            `json:"key"`
		CveID          string            `json:"cve_id"`
		PluginID       string            `json:"plugin_id"`
		Title          string            `json:"title"`
		Severity       string            `json:"severity"`
		CVSSBaseScore  float64           `json:"cvss_base_score"`
		Scanner        string            `json:"scanner"`
		Status         string            `json:"status"`
		OpenFindings   int               `json:"open_findings"`
		TotalFindings  int               `json:"total_findings"`
		AffectedAssets int               `json:"affected_assets"`
		Affected       []models.Affected `json:"affected"`
	}

	var rows []map[string]interface{}
	for cursor.HasMore() {
		var row topVulnerabilityRow
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}

		rows = append(rows, map[string]interface{}{
			"key":             row.Key,
			"cve_id":          row.CveID,
			"plugin_id":       row.PluginID,
			"title":           row.Title,
			"severity":        row.Severity,
			"cvss_base_score": row.CVSSBaseScore,
			"scanner":         row.Scanner,
			"status":          row.Status,
			"open_findings":   row.OpenFindings,
			"total_findings":  row.TotalFindings,
			"affected_assets": row.AffectedAssets,
			"fixed_in":        util.FixedVersionHint("", row.Affected),
		})
	}
	return rows, nil
}

// ResolveVulnerability fetches one vulnerability by key, or nil when it does
// not exist.
func ResolveVulnerability(db database.DBConnection, key string) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR v IN vulnerability
			FILTER v._key == @key
			LIMIT 1
			RETURN v
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": key,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var vulnerability model.Vulnerability
	if _, err := cursor.ReadDocument(ctx, &vulnerability); err != nil {
		return nil, err
	}
	return vulnerability, nil
}
