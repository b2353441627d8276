// Package dashboard implements the REST convenience wrapper over the
// dashboard aggregations. The GraphQL endpoint serves the richer queries;
// this summary is what the MCP tools consume.
package dashboard

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
)

// GetDashboardSummary handles GET requests for the aggregate security
// posture: entity counts, status and severity distributions, remediation
// speed and the assets carrying the most open high-severity findings.
func GetDashboardSummary(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		days := c.QueryInt("days", 90)
		if days < 1 || days > 365 {
			days = 90
		}

		findingsByStatus, err := countByField(ctx, db, "finding", "status")
		if err != nil {
			return summaryError(c, err)
		}
		assetsByStatus, err := countByField(ctx, db, "asset", "status")
		if err != nil {
			return summaryError(c, err)
		}
		vulnerabilitiesByStatus, err := countByField(ctx, db, "vulnerability", "status")
		if err != nil {
			return summaryError(c, err)
		}
		openBySeverity, err := openFindingsBySeverity(ctx, db)
		if err != nil {
			return summaryError(c, err)
		}
		mttrDays, fixedCount, err := remediationStats(ctx, db, days)
		if err != nil {
			return summaryError(c, err)
		}
		topAssets, err := topRiskAssets(ctx, db, 5)
		if err != nil {
			return summaryError(c, err)
		}

		totalFindings := 0
		for _, count := range findingsByStatus {
			totalFindings += count
		}
		totalAssets := 0
		for _, count := range assetsByStatus {
			totalAssets += count
		}
		totalVulnerabilities := 0
		for _, count := range vulnerabilitiesByStatus {
			totalVulnerabilities += count
		}

		return c.JSON(fiber.Map{
			"success": true,
			"summary": fiber.Map{
				"totals": fiber.Map{
					"assets":          totalAssets,
					"vulnerabilities": totalVulnerabilities,
					"findings":        totalFindings,
				},
				"findings_by_status":          findingsByStatus,
				"assets_by_status":            assetsByStatus,
				"vulnerabilities_by_status":   vulnerabilitiesByStatus,
				"open_findings_by_severity":   openBySeverity,
				"mean_time_to_remediate_days": mttrDays,
				"findings_fixed_in_window":    fixedCount,
				"window_days":                 days,
				"top_risk_assets":             topAssets,
			},
		})
	}
}

func countByField(ctx context.Context, db database.DBConnection, collection, field string) (map[string]int, error) {
	query := `
		FOR d IN @@collection
			COLLECT value = d.@field WITH COUNT INTO count
			RETURN { value, count }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"@collection": collection,
			"field":       field,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	result := map[string]int{}
	for cursor.HasMore() {
		var row struct {
			Value string `json:"value"`
			Count int    `json:"count"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		result[row.Value] = row.Count
	}
	return result, nil
}

func openFindingsBySeverity(ctx context.Context, db database.DBConnection) (map[string]int, error) {
	query := `
		FOR f IN finding
			FILTER f.status IN ["OPEN", "MITIGATED"]
			COLLECT severity = f.severity WITH COUNT INTO count
			RETURN { value: severity, count }
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	result := map[string]int{}
	for cursor.HasMore() {
		var row struct {
			Value string `json:"value"`
			Count int    `json:"count"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		result[row.Value] = row.Count
	}
	return result, nil
}

// remediationStats returns the mean days from finding creation to fix for
// findings fixed inside the window, plus how many were fixed.
func remediationStats(ctx context.Context, db database.DBConnection, days int) (float64, int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	query := `
		FOR f IN finding
			FILTER f.fixed_at != null
			FILTER DATE_TIMESTAMP(f.fixed_at) >= @cutoff
			COLLECT AGGREGATE avgMs = AVERAGE(DATE_TIMESTAMP(f.fixed_at) - DATE_TIMESTAMP(f.created_at)),
				fixedCount = LENGTH(1)
			RETURN { avg_ms: avgMs, fixed_count: fixedCount }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"cutoff": cutoff.Unix() * 1000,
		},
	})
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close()

	var row struct {
		AvgMs      *float64 `json:"avg_ms"`
		FixedCount int      `json:"fixed_count"`
	}
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return 0, 0, err
		}
	}
	if row.AvgMs == nil {
		return 0, row.FixedCount, nil
	}
	return *row.AvgMs / 86400000.0, row.FixedCount, nil
}

// topRiskAssets lists the assets with the most open CRITICAL and HIGH findings.
func topRiskAssets(ctx context.Context, db database.DBConnection, limit int) ([]map[string]interface{}, error) {
	query := `
		FOR f IN finding
			FILTER f.status IN ["OPEN", "MITIGATED"]
			FILTER f.severity IN ["CRITICAL", "HIGH"]
			COLLECT assetKey = f.asset_key WITH COUNT INTO count
			SORT count DESC
			LIMIT @limit
			LET a = DOCUMENT(CONCAT("asset/", assetKey))
			RETURN {
				asset_key: assetKey,
				name: a.name,
				hostname: a.hostname,
				open_high_findings: count
			}
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"limit": limit,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	assets := []map[string]interface{}{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		assets = append(assets, row)
	}
	return assets, nil
}

func summaryError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Failed to build dashboard summary: " + err.Error(),
	})
}
