// Package graphql assembles the dashboard query schema from the module
// query fields.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/graphql/modules/dashboard"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/graphql/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/graphql/modules/vulnerabilities"
)

var dbConn database.DBConnection

// InitDB stores the connection the resolvers close over. Call before
// CreateSchema.
func InitDB(db database.DBConnection) {
	dbConn = db
}

// CreateSchema builds the root query object from every module's query fields.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}

	for name, field := range dashboard.GetQueryFields(dbConn) {
		fields[name] = field
	}
	for name, field := range findings.GetQueryFields(dbConn) {
		fields[name] = field
	}
	for name, field := range vulnerabilities.GetQueryFields(dbConn) {
		fields[name] = field
	}

	rootQuery := graphql.ObjectConfig{Name: "Query", Fields: fields}
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(rootQuery),
	})
}
