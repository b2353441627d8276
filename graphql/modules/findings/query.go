// Package findings defines the GraphQL queries for finding search.
package findings

import (
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
)

// GetQueryFields returns the finding queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	findingType := GetFindingType(db)

	return graphql.Fields{
		"finding": &graphql.Field{
			Type: findingType,
			Args: graphql.FieldConfigArgument{
				"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				key := p.Args["key"].(string)
				return ResolveFinding(db, key)
			},
		},
		"findings": &graphql.Field{
			Type: graphql.NewList(findingType),
			Args: graphql.FieldConfigArgument{
				"asset_key":         &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"vulnerability_key": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"assessment_key":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"status":            &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"severity":          &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"limit":             &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				filter := FindingFilter{
					AssetKey:         p.Args["asset_key"].(string),
					VulnerabilityKey: p.Args["vulnerability_key"].(string),
					AssessmentKey:    p.Args["assessment_key"].(string),
					Status:           p.Args["status"].(string),
					Severity:         p.Args["severity"].(string),
					Limit:            p.Args["limit"].(int),
				}
				return ResolveFindings(db, filter)
			},
		},
	}
}
