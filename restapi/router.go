// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/admin"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/assessments"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/assets"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/attachments"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/dashboard"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/imports"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/vulnerabilities"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// CORS is handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, db database.DBConnection, schema graphql.Schema) {

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Assessments
	assessmentGroup := api.Group("/assessments")
	assessmentGroup.Post("/", assessments.PostAssessment(db))
	assessmentGroup.Get("/", assessments.GetAssessments(db))
	assessmentGroup.Get("/:key", assessments.GetAssessment(db))
	assessmentGroup.Put("/:key", assessments.PutAssessment(db))
	assessmentGroup.Post("/:key/complete", assessments.PostCompleteAssessment(db))
	assessmentGroup.Delete("/:key", assessments.DeleteAssessment(db))

	// Assets
	assetGroup := api.Group("/assets")
	assetGroup.Post("/", assets.PostAsset(db))
	assetGroup.Get("/", assets.GetAssets(db))
	assetGroup.Get("/:key", assets.GetAsset(db))
	assetGroup.Put("/:key", assets.PutAsset(db))
	assetGroup.Delete("/:key", assets.DeleteAsset(db))
	assetGroup.Get("/:key/transitions", assets.GetAssetTransitions(db))
	assetGroup.Get("/:key/history", assets.GetAssetHistory(db))
	assetGroup.Put("/:key/status", assets.PutAssetStatus(db))

	// Findings live under the vulnerabilities namespace. The findings group
	// must be registered before the /vulnerabilities/:key routes so the
	// literal "findings" segment is not swallowed as a key.
	findingGroup := api.Group("/vulnerabilities/findings")
	findingGroup.Post("/", findings.PostFinding(db))
	findingGroup.Get("/:key", findings.GetFinding(db))
	findingGroup.Delete("/:key", findings.DeleteFinding(db))
	findingGroup.Get("/:key/transitions", findings.GetFindingTransitions(db))
	findingGroup.Get("/:key/history", findings.GetFindingHistory(db))
	findingGroup.Patch("/:key/status", findings.PatchFindingStatus(db))
	findingGroup.Post("/:key/mark-fixed", findings.PostMarkFixed(db))
	findingGroup.Post("/:key/mark-verified", findings.PostMarkVerified(db))
	findingGroup.Post("/:key/accept-risk", findings.PostAcceptRisk(db))
	findingGroup.Post("/:key/reopen", findings.PostReopen(db))

	// Vulnerabilities
	vulnerabilityGroup := api.Group("/vulnerabilities")
	vulnerabilityGroup.Post("/", vulnerabilities.PostVulnerability(db))
	vulnerabilityGroup.Get("/", vulnerabilities.GetVulnerabilities(db))
	vulnerabilityGroup.Get("/:key", vulnerabilities.GetVulnerability(db))
	vulnerabilityGroup.Put("/:key", vulnerabilities.PutVulnerability(db))
	vulnerabilityGroup.Delete("/:key", vulnerabilities.DeleteVulnerability(db))
	vulnerabilityGroup.Patch("/:key/status", vulnerabilities.PatchVulnerabilityStatus(db))
	vulnerabilityGroup.Get("/:key/transitions", vulnerabilities.GetVulnerabilityTransitions(db))
	vulnerabilityGroup.Get("/:key/history", vulnerabilities.GetVulnerabilityHistory(db))

	// Cross-entity finding search
	api.Get("/findings", findings.GetFindings(db))

	// Attachments (metadata only; blobs live in object storage)
	attachmentGroup := api.Group("/attachments")
	attachmentGroup.Post("/", attachments.PostAttachment(db))
	attachmentGroup.Get("/", attachments.GetAttachments(db))
	attachmentGroup.Get("/:key", attachments.GetAttachment(db))
	attachmentGroup.Put("/:key", attachments.PutAttachment(db))
	attachmentGroup.Delete("/:key", attachments.DeleteAttachment(db))

	// Scan imports
	importGroup := api.Group("/imports")
	importGroup.Post("/scan", imports.PostScanImport(db))
	importGroup.Get("/", imports.GetImports(db))
	importGroup.Get("/:key", imports.GetImport(db))

	// Dashboard summary for clients that do not speak GraphQL
	api.Get("/dashboard/summary", dashboard.GetDashboardSummary(db))

	// Admin
	adminGroup := api.Group("/admin")
	adminGroup.Post("/backfill-remediation", admin.PostBackfillRemediation(db))
	adminGroup.Get("/backfill-remediation/status", admin.GetBackfillStatus())

	log.Println("API routes initialized successfully")
}
