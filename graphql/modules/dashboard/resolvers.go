// Package dashboard implements the resolvers for dashboard metrics.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// ResolveOverview fetches the high-level dashboard metrics
func ResolveOverview(db database.DBConnection) (interface{}, error) {
	ctx := context.Background()

	query := `
		RETURN {
			total_assets: LENGTH(asset),
			total_vulnerabilities: LENGTH(vulnerability),
			total_findings: LENGTH(finding),
			open_findings: LENGTH(FOR f IN finding FILTER f.status IN ["OPEN", "MITIGATED"] RETURN 1),
			total_assessments: LENGTH(assessment)
		}
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var overview map[string]interface{}
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &overview); err != nil {
			return nil, err
		}
	}
	return overview, nil
}

// ResolveSeverityDistribution fetches the severity breakdown of open findings
func ResolveSeverityDistribution(db database.DBConnection) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR f IN finding
			FILTER f.status IN ["OPEN", "MITIGATED"]
			COLLECT severity = f.severity WITH COUNT INTO count
			RETURN { severity, count }
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	result := map[string]interface{}{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"none":     0,
	}
	for cursor.HasMore() {
		var row struct {
			Severity string `json:"severity"`
			Count    int    `json:"count"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		switch row.Severity {
		case "CRITICAL":
			result["critical"] = row.Count
		case "HIGH":
			result["high"] = row.Count
		case "MEDIUM":
			result["medium"] = row.Count
		case "LOW":
			result["low"] = row.Count
		default:
			result["none"] = result["none"].(int) + row.Count
		}
	}
	return result, nil
}

// ResolveStatusBreakdown returns status counts for one entity kind
func ResolveStatusBreakdown(db database.DBConnection, kind string) (interface{}, error) {
	collections := map[string]string{
		"asset":         "asset",
		"vulnerability": "vulnerability",
		"finding":       "finding",
	}
	collection, ok := collections[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind: %s", kind)
	}

	ctx := context.Background()
	query := `
		FOR d IN @@collection
			COLLECT status = d.status WITH COUNT INTO count
			SORT count DESC
			RETURN { status, count }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"@collection": collection,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var breakdown []map[string]interface{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, nil
}

// ResolveTopRisks fetches the assets carrying the most open high-severity findings
func ResolveTopRisks(db database.DBConnection, limit int) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR f IN finding
			FILTER f.status IN ["OPEN", "MITIGATED"]
			COLLECT assetKey = f.asset_key AGGREGATE
				criticalCount = SUM(f.severity == "CRITICAL" ? 1 : 0),
				highCount = SUM(f.severity == "HIGH" ? 1 : 0),
				totalOpen = LENGTH(1)
			SORT criticalCount DESC, highCount DESC, totalOpen DESC
			LIMIT @limit
			LET a = DOCUMENT(CONCAT("asset/", assetKey))
			RETURN {
				asset_key: assetKey,
				name: a.name,
				hostname: a.hostname,
				environment: a.environment,
				critical_count: criticalCount,
				high_count: highCount,
				total_open: totalOpen
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

	var risks []map[string]interface{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			continue
		}
		risks = append(risks, row)
	}
	return risks, nil
}

// ResolveFindingTrend reconstructs daily finding activity by replaying every
// finding's status history.
func ResolveFindingTrend(db database.DBConnection, days int) ([]map[string]interface{}, error) {
	ctx := context.Background()

	// ------------------------------------------------------------------------
	// STEP 1: Fetch all findings with their histories.
	// The full history is needed to know each finding's state before the
	// window starts, not just inside it.
	// ------------------------------------------------------------------------
	query := `
		FOR f IN finding
			RETURN {
				created_at: f.created_at,
				status_history: f.status_history
			}
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	type findingHistory struct {
		CreatedAt     time.Time                 `json:"created_at"`
		StatusHistory []model.StatusChangeEvent `json:"status_history"`
	}

	var findings []findingHistory
	for cursor.HasMore() {
		var fh findingHistory
		if _, err := cursor.ReadDocument(ctx, &fh); err == nil {
			findings = append(findings, fh)
		}
	}

	// ------------------------------------------------------------------------
	// STEP 2: Replay day by day, oldest to newest. Per-finding cursors only
	// advance, so the replay stays linear in the total event count.
	// ------------------------------------------------------------------------
	statuses := make([]string, len(findings))
	eventIdx := make([]int, len(findings))
	for i := range findings {
		statuses[i] = model.FindingStatusOpen.String()
	}

	var trend []map[string]interface{}
	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -(days - 1))

	// Advance everything that happened before the window so the first day's
	// open_total is right.
	catchUp := windowStart.AddDate(0, 0, -1)
	endOfCatchUp := time.Date(catchUp.Year(), catchUp.Month(), catchUp.Day(), 23, 59, 59, 0, time.UTC)
	for i, fh := range findings {
		for eventIdx[i] < len(fh.StatusHistory) && !fh.StatusHistory[eventIdx[i]].OccurredAt.After(endOfCatchUp) {
			statuses[i] = fh.StatusHistory[eventIdx[i]].NewStatus
			eventIdx[i]++
		}
	}

	for d := 0; d < days; d++ {
		day := windowStart.AddDate(0, 0, d)
		dayStr := day.Format("2006-01-02")
		endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)

		opened := 0
		fixed := 0
		openTotal := 0

		for i, fh := range findings {
			if fh.CreatedAt.Format("2006-01-02") == dayStr {
				opened++
			}
			for eventIdx[i] < len(fh.StatusHistory) && !fh.StatusHistory[eventIdx[i]].OccurredAt.After(endOfDay) {
				event := fh.StatusHistory[eventIdx[i]]
				if event.NewStatus == model.FindingStatusFixed.String() {
					fixed++
				}
				statuses[i] = event.NewStatus
				eventIdx[i]++
			}
			if fh.CreatedAt.After(endOfDay) {
				continue
			}
			if statuses[i] == model.FindingStatusOpen.String() || statuses[i] == model.FindingStatusMitigated.String() {
				openTotal++
			}
		}

		trend = append(trend, map[string]interface{}{
			"date":       dayStr,
			"opened":     opened,
			"fixed":      fixed,
			"open_total": openTotal,
		})
	}

	return trend, nil
}

// remediationSample is one fixed finding in the MTTR window
type remediationSample struct {
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	FixedAt   time.Time `json:"fixed_at"`
}

func fetchRemediationSamples(ctx context.Context, db database.DBConnection, days int) ([]remediationSample, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	query := `
		FOR f IN finding
			FILTER f.fixed_at != null
			FILTER DATE_TIMESTAMP(f.fixed_at) >= @cutoff
			RETURN {
				severity: f.severity,
				created_at: f.created_at,
				fixed_at: f.fixed_at
			}
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"cutoff": cutoff.Unix() * 1000,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var samples []remediationSample
	for cursor.HasMore() {
		var sample remediationSample
		if _, err := cursor.ReadDocument(ctx, &sample); err == nil {
			samples = append(samples, sample)
		}
	}
	return samples, nil
}

// ResolveMTTR computes mean time to remediate, broken down by severity
func ResolveMTTR(db database.DBConnection, days int) (interface{}, error) {
	ctx := context.Background()

	samples, err := fetchRemediationSamples(ctx, db, days)
	if err != nil {
		return nil, err
	}

	bySeverity := map[string][]float64{}
	var all []float64
	for _, sample := range samples {
		remediationDays := sample.FixedAt.Sub(sample.CreatedAt).Hours() / 24
		if remediationDays < 0 {
			continue
		}
		bySeverity[sample.Severity] = append(bySeverity[sample.Severity], remediationDays)
		all = append(all, remediationDays)
	}

	severityOrder := []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "NONE"}
	var rows []map[string]interface{}
	for _, severity := range severityOrder {
		values := bySeverity[severity]
		if len(values) == 0 {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"severity":    severity,
			"mean_days":   mean(values),
			"median_days": median(values),
			"min_days":    minOf(values),
			"max_days":    maxOf(values),
			"sample_size": len(values),
		})
	}

	return map[string]interface{}{
		"by_severity":       rows,
		"overall_mean_days": mean(all),
		"analysis_period":   days,
		"total_remediated":  len(all),
	}, nil
}

// ResolveMTTRTrend buckets remediation speed by the month the fix landed
func ResolveMTTRTrend(db database.DBConnection, days int) (interface{}, error) {
	ctx := context.Background()

	samples, err := fetchRemediationSamples(ctx, db, days)
	if err != nil {
		return nil, err
	}

	byMonth := map[string][]float64{}
	for _, sample := range samples {
		remediationDays := sample.FixedAt.Sub(sample.CreatedAt).Hours() / 24
		if remediationDays < 0 {
			continue
		}
		month := sample.FixedAt.Format("2006-01")
		byMonth[month] = append(byMonth[month], remediationDays)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	var trend []map[string]interface{}
	for _, month := range months {
		values := byMonth[month]
		trend = append(trend, map[string]interface{}{
			"month":    month,
			"avg_mttr": mean(values),
			"count":    len(values),
		})
	}
	return trend, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
