// Package dashboard defines the GraphQL types for the security posture dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// DashboardOverviewType represents the high-level metrics for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total_assets":          &graphql.Field{Type: graphql.Int},
		"total_vulnerabilities": &graphql.Field{Type: graphql.Int},
		"total_findings":        &graphql.Field{Type: graphql.Int},
		"open_findings":         &graphql.Field{Type: graphql.Int},
		"total_assessments":     &graphql.Field{Type: graphql.Int},
	},
})

// SeverityDistributionType represents the data for the pie/bar charts
var SeverityDistributionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SeverityDistribution",
	Fields: graphql.Fields{
		"critical": &graphql.Field{Type: graphql.Int},
		"high":     &graphql.Field{Type: graphql.Int},
		"medium":   &graphql.Field{Type: graphql.Int},
		"low":      &graphql.Field{Type: graphql.Int},
		"none":     &graphql.Field{Type: graphql.Int},
	},
})

// StatusCountType represents one status bucket in a distribution
var StatusCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusCount",
	Fields: graphql.Fields{
		"status": &graphql.Field{Type: graphql.String},
		"count":  &graphql.Field{Type: graphql.Int},
	},
})

// RiskyAssetType represents rows for the "Top Risky Assets" table
var RiskyAssetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RiskyAsset",
	Fields: graphql.Fields{
		"asset_key":      &graphql.Field{Type: graphql.String},
		"name":           &graphql.Field{Type: graphql.String},
		"hostname":       &graphql.Field{Type: graphql.String},
		"environment":    &graphql.Field{Type: graphql.String},
		"critical_count": &graphql.Field{Type: graphql.Int},
		"high_count":     &graphql.Field{Type: graphql.Int},
		"total_open":     &graphql.Field{Type: graphql.Int},
	},
})

// FindingTrendPointType represents the daily finding activity reconstructed
// from status histories
var FindingTrendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FindingTrendPoint",
	Fields: graphql.Fields{
		"date":       &graphql.Field{Type: graphql.String},
		"opened":     &graphql.Field{Type: graphql.Int},
		"fixed":      &graphql.Field{Type: graphql.Int},
		"open_total": &graphql.Field{Type: graphql.Int},
	},
})

// MTTRBySeverityType represents MTTR metrics for a specific severity level
var MTTRBySeverityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MTTRBySeverity",
	Fields: graphql.Fields{
		"severity":    &graphql.Field{Type: graphql.String},
		"mean_days":   &graphql.Field{Type: graphql.Float},
		"median_days": &graphql.Field{Type: graphql.Float},
		"min_days":    &graphql.Field{Type: graphql.Float},
		"max_days":    &graphql.Field{Type: graphql.Float},
		"sample_size": &graphql.Field{Type: graphql.Int},
	},
})

// MTTRAnalysisType represents the complete MTTR analysis
var MTTRAnalysisType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MTTRAnalysis",
	Fields: graphql.Fields{
		"by_severity":       &graphql.Field{Type: graphql.NewList(MTTRBySeverityType)},
		"overall_mean_days": &graphql.Field{Type: graphql.Float},
		"analysis_period":   &graphql.Field{Type: graphql.Int},
		"total_remediated":  &graphql.Field{Type: graphql.Int},
	},
})

// MTTRTrendPointType represents a single point in MTTR trend over time
var MTTRTrendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MTTRTrendPoint",
	Fields: graphql.Fields{
		"month":    &graphql.Field{Type: graphql.String},
		"avg_mttr": &graphql.Field{Type: graphql.Float},
		"count":    &graphql.Field{Type: graphql.Int},
	},
})
