// Package findings defines the GraphQL types for finding search.
package findings

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// StatusChangeType is one entry of an entity's status history.
var StatusChangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusChange",
	Fields: graphql.Fields{
		"previous_status": &graphql.Field{Type: graphql.String},
		"new_status":      &graphql.Field{Type: graphql.String},
		"actor_id":        &graphql.Field{Type: graphql.String},
		"notes":           &graphql.Field{Type: graphql.String},
		"occurred_at":     &graphql.Field{Type: graphql.DateTime},
	},
})

// AssetInfoType is the asset summary embedded in a finding.
var AssetInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AssetInfo",
	Fields: graphql.Fields{
		"key":         &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"hostname":    &graphql.Field{Type: graphql.String},
		"ip_address":  &graphql.Field{Type: graphql.String},
		"environment": &graphql.Field{Type: graphql.String},
		"asset_type":  &graphql.Field{Type: graphql.String},
		"status":      &graphql.Field{Type: graphql.String},
	},
})

// VulnerabilityInfoType is the vulnerability summary embedded in a finding.
var VulnerabilityInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "VulnerabilityInfo",
	Fields: graphql.Fields{
		"key":             &graphql.Field{Type: graphql.String},
		"cve_id":          &graphql.Field{Type: graphql.String},
		"title":           &graphql.Field{Type: graphql.String},
		"severity":        &graphql.Field{Type: graphql.String},
		"cvss_base_score": &graphql.Field{Type: graphql.Float},
		"cvss_vector":     &graphql.Field{Type: graphql.String},
		"scanner":         &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
	},
})

// GetFindingType returns the FindingType with its nested lookups bound to db.
func GetFindingType(db database.DBConnection) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Finding",
		Fields: graphql.Fields{
			"key":               &graphql.Field{Type: graphql.String},
			"assessment_key":    &graphql.Field{Type: graphql.String},
			"asset_key":         &graphql.Field{Type: graphql.String},
			"vulnerability_key": &graphql.Field{Type: graphql.String},
			"title":             &graphql.Field{Type: graphql.String},
			"severity":          &graphql.Field{Type: graphql.String},
			"status":            &graphql.Field{Type: graphql.String},
			"port":              &graphql.Field{Type: graphql.Int},
			"protocol":          &graphql.Field{Type: graphql.String},
			"evidence":          &graphql.Field{Type: graphql.String},
			"remediation":       &graphql.Field{Type: graphql.String},
			"installed_version": &graphql.Field{Type: graphql.String},
			"package_purl":      &graphql.Field{Type: graphql.String},
			"fix_notes":         &graphql.Field{Type: graphql.String},
			"acceptance_reason": &graphql.Field{Type: graphql.String},
			"fixed_at":          &graphql.Field{Type: graphql.DateTime},
			"verified_at":       &graphql.Field{Type: graphql.DateTime},
			"risk_accepted_at":  &graphql.Field{Type: graphql.DateTime},
			"expires_at":        &graphql.Field{Type: graphql.DateTime},
			"first_seen_at":     &graphql.Field{Type: graphql.DateTime},
			"last_seen_at":      &graphql.Field{Type: graphql.DateTime},
			"created_at":        &graphql.Field{Type: graphql.DateTime},
			"updated_at":        &graphql.Field{Type: graphql.DateTime},
			"status_history":    &graphql.Field{Type: graphql.NewList(StatusChangeType)},

			"asset": &graphql.Field{
				Type: AssetInfoType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					finding, ok := p.Source.(model.Finding)
					if !ok || finding.AssetKey == "" {
						return nil, nil
					}

					ctx := context.Background()
					query := `
						FOR a IN asset
							FILTER a._key == @key
							LIMIT 1
							RETURN a
					`
					cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
						BindVars: map[string]interface{}{
							"key": finding.AssetKey,
						},
					})
					if err != nil {
						return nil, err
					}
					defer cursor.Close()

					if !cursor.HasMore() {
						return nil, nil
					}
					var asset model.Asset
					if _, err := cursor.ReadDocument(ctx, &asset); err != nil {
						return nil, err
					}
					return asset, nil
				},
			},
			"vulnerability": &graphql.Field{
				Type: VulnerabilityInfoType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					finding, ok := p.Source.(model.Finding)
					if !ok || finding.VulnerabilityKey == "" {
						return nil, nil
					}

					ctx := context.Background()
					query := `
						FOR v IN vulnerability
							FILTER v._key == @key
							LIMIT 1
							RETURN v
					`
					cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
						BindVars: map[string]interface{}{
							"key": finding.VulnerabilityKey,
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
				},
			},
		},
	})
}
