// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		// Section 1: Top Cards (Overview)
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(db)
			},
		},
		// Section 2: Charts (Severity of open findings)
		"dashboardSeverity": &graphql.Field{
			Type: SeverityDistributionType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveSeverityDistribution(db)
			},
		},
		// Section 3: Status breakdown per entity kind
		"dashboardStatusBreakdown": &graphql.Field{
			Type: graphql.NewList(StatusCountType),
			Args: graphql.FieldConfigArgument{
				"kind": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "finding"},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				kind := p.Args["kind"].(string)
				return ResolveStatusBreakdown(db, kind)
			},
		},
		// Section 4: Tables (Top Risky Assets)
		"dashboardTopRisks": &graphql.Field{
			Type: graphql.NewList(RiskyAssetType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit := p.Args["limit"].(int)
				return ResolveTopRisks(db, limit)
			},
		},
		// Section 5: Trend Line (finding activity replayed from histories)
		"dashboardFindingTrend": &graphql.Field{
			Type: graphql.NewList(FindingTrendPointType),
			Args: graphql.FieldConfigArgument{
				"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 90},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				days := p.Args["days"].(int)
				return ResolveFindingTrend(db, days)
			},
		},

		// MTTR Analysis by Severity
		"dashboardMTTR": &graphql.Field{
			Type: MTTRAnalysisType,
			Args: graphql.FieldConfigArgument{
				"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 90},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				days := p.Args["days"].(int)
				return ResolveMTTR(db, days)
			},
		},

		// MTTR Trend Over Time (Monthly)
		"dashboardMTTRTrend": &graphql.Field{
			Type: graphql.NewList(MTTRTrendPointType),
			Args: graphql.FieldConfigArgument{
				"days": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 180},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				days := p.Args["days"].(int)
				return ResolveMTTRTrend(db, days)
			},
		},
	}
}
