// Package findings implements the resolvers for finding search.
package findings

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// FindingFilter narrows a finding search. Empty fields are ignored.
type FindingFilter struct {
	AssetKey         string
	VulnerabilityKey string
	AssessmentKey    string
	Status           string
	Severity         string
	Limit            int
}

// ResolveFindings fetches findings matching the filter, newest first.
func ResolveFindings(db database.DBConnection, filter FindingFilter) ([]model.Finding, error) {
	ctx := context.Background()

	query := `FOR f IN finding`
	bindVars := map[string]interface{}{}

	if filter.AssetKey != "" {
		query += ` FILTER f.asset_key == @assetKey`
		bindVars["assetKey"] = filter.AssetKey
	}
	if filter.VulnerabilityKey != "" {
		query += ` FILTER f.vulnerability_key == @vulnerabilityKey`
		bindVars["vulnerabilityKey"] = filter.VulnerabilityKey
	}
	if filter.AssessmentKey != "" {
		query += ` FILTER f.assessment_key == @assessmentKey`
		bindVars["assessmentKey"] = filter.AssessmentKey
	}
	if filter.Status != "" {
		query += ` FILTER f.status == UPPER(@status)`
		bindVars["status"] = filter.Status
	}
	if filter.Severity != "" {
		query += ` FILTER f.severity == UPPER(@severity)`
		bindVars["severity"] = filter.Severity
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 50
	}
	query += ` SORT f.created_at DESC LIMIT @limit RETURN f`
	bindVars["limit"] = limit

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	findings := []model.Finding{}
	for cursor.HasMore() {
		var finding model.Finding
		if _, err := cursor.ReadDocument(ctx, &finding); err != nil {
			continue
		}
		findings = append(findings, finding)
	}
	return findings, nil
}

// ResolveFinding fetches one finding by key, or nil when it does not exist.
func ResolveFinding(db database.DBConnection, key string) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR f IN finding
			FILTER f._key == @key
			LIMIT 1
			RETURN f
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
	var finding model.Finding
	if _, err := cursor.ReadDocument(ctx, &finding); err != nil {
		return nil, err
	}
	return finding, nil
}
