// Package vulnerabilities defines the GraphQL queries for vulnerability data.
package vulnerabilities

import (
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
)

// GetQueryFields returns the vulnerability queries to be mounted in the root
// schema.
func GetQueryFields(db database.DBConnection) graphql.Fields {
	vulnerabilityType := GetVulnerabilityType(db)

	return graphql.Fields{
		"vulnerability": &graphql.Field{
			Type: vulnerabilityType,
			Args: graphql.FieldConfigArgument{
				"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				key := p.Args["key"].(string)
				return ResolveVulnerability(db, key)
			},
		},
		"topVulnerabilities": &graphql.Field{
			Type: graphql.NewList(TopVulnerabilityType),
			Args: graphql.FieldConfigArgument{
				"severity": &graphql.ArgumentConfig{Type: SeverityEnum},
				"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				severity, _ := p.Args["severity"].(string)
				limit := p.Args["limit"].(int)
				return ResolveTopVulnerabilities(db, severity, limit)
			},
		},
	}
}
