// Package vulnerabilities defines the GraphQL types for vulnerability data.
package vulnerabilities

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/graphql/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// SeverityEnum constrains severity arguments to the known ratings.
var SeverityEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Severity",
	Values: graphql.EnumValueConfigMap{
		"CRITICAL": &graphql.EnumValueConfig{Value: "CRITICAL"},
		"HIGH":     &graphql.EnumValueConfig{Value: "HIGH"},
		"MEDIUM":   &graphql.EnumValueConfig{Value: "MEDIUM"},
		"LOW":      &graphql.EnumValueConfig{Value: "LOW"},
		"NONE":     &graphql.EnumValueConfig{Value: "NONE"},
	},
})

// TopVulnerabilityType is one row of the most-exposed vulnerabilities table.
var TopVulnerabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TopVulnerability",
	Fields: graphql.Fields{
		"key":             &graphql.Field{Type: graphql.String},
		"cve_id":          &graphql.Field{Type: graphql.String},
		"plugin_id":       &graphql.Field{Type: graphql.String},
		"title":           &graphql.Field{Type: graphql.String},
		"severity":        &graphql.Field{Type: graphql.String},
		"cvss_base_score": &graphql.Field{Type: graphql.Float},
		"scanner":         &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
		"open_findings":   &graphql.Field{Type: graphql.Int},
		"total_findings":  &graphql.Field{Type: graphql.Int},
		"affected_assets": &graphql.Field{Type: graphql.Int},
		"fixed_in":        &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// GetVulnerabilityType returns the VulnerabilityType with its nested lookups
// bound to db.
func GetVulnerabilityType(db database.DBConnection) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Vulnerability",
		Fields: graphql.Fields{
			"key":             &graphql.Field{Type: graphql.String},
			"title":           &graphql.Field{Type: graphql.String},
			"description":     &graphql.Field{Type: graphql.String},
			"cve_id":          &graphql.Field{Type: graphql.String},
			"cwe_id":          &graphql.Field{Type: graphql.String},
			"severity":        &graphql.Field{Type: graphql.String},
			"cvss_vector":     &graphql.Field{Type: graphql.String},
			"cvss_base_score": &graphql.Field{Type: graphql.Float},
			"scanner":         &graphql.Field{Type: graphql.String},
			"plugin_id":       &graphql.Field{Type: graphql.String},
			"remediation":     &graphql.Field{Type: graphql.String},
			"references":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"status":          &graphql.Field{Type: graphql.String},
			"status_history":  &graphql.Field{Type: graphql.NewList(findings.StatusChangeType)},
			"created_at":      &graphql.Field{Type: graphql.DateTime},
			"updated_at":      &graphql.Field{Type: graphql.DateTime},

			"fixed_in": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vulnerability, ok := p.Source.(model.Vulnerability)
					if !ok {
						return []string{}, nil
					}
					return util.FixedVersionHint("", vulnerability.Affected), nil
				},
			},
			"open_findings": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vulnerability, ok := p.Source.(model.Vulnerability)
					if !ok {
						return 0, nil
					}

					ctx := context.Background()
					query := `
						RETURN LENGTH(
							FOR f IN finding
								FILTER f.vulnerability_key == @key
								FILTER f.status IN ["OPEN", "MITIGATED"]
								RETURN 1
						)
					`
					cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
						BindVars: map[string]interface{}{
							"key": vulnerability.Key,
						},
					})
					if err != nil {
						return 0, err
					}
					defer cursor.Close()

					var count int
					if cursor.HasMore() {
						if _, err := cursor.ReadDocument(ctx, &count); err != nil {
							return 0, err
						}
					}
					return count, nil
				},
			},
		},
	})
}
