package imports

import (
	"context"
	"errors"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// PostScanImport handles POST requests for submitting a normalized scan
// document. Reconciliation runs synchronously; the response carries the
// import record with its counts.
func PostScanImport(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc model.ScanDocument

		if err := c.BodyParser(&doc); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if doc.Source == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "source is required",
			})
		}

		ctx := context.Background()
		run, err := ProcessScanImport(ctx, db, doc, c.Get("X-Actor-Id"))
		if err != nil {
			response := fiber.Map{
				"success": false,
				"message": "Scan import failed: " + err.Error(),
			}
			if run != nil {
				response["import"] = run
			}
			return c.Status(fiber.StatusInternalServerError).JSON(response)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Scan import completed",
			"import":  run,
		})
	}
}

// GetImports handles GET requests for the import run history.
func GetImports(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR s IN scan_import`
		bindVars := map[string]interface{}{}

		if source := c.Query("source"); source != "" {
			query += ` FILTER s.source == @source`
			bindVars["source"] = source
		}
		if status := c.Query("status"); status != "" {
			query += ` FILTER s.status == @status`
			bindVars["status"] = status
		}

		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 500 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		query += ` SORT s.started_at DESC LIMIT @offset, @limit RETURN s`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query imports: " + err.Error(),
			})
		}
		defer cursor.Close()

		imports := []model.ScanImport{}
		for cursor.HasMore() {
			var run model.ScanImport
			if _, err := cursor.ReadDocument(ctx, &run); err != nil {
				continue
			}
			imports = append(imports, run)
		}

		response := fiber.Map{
			"success": true,
			"count":   len(imports),
			"imports": imports,
		}
		if source := c.Query("source"); source != "" {
			if lastRun, err := util.GetLastImportRun(db, source); err == nil && !lastRun.IsZero() {
				response["last_completed_at"] = lastRun
			}
		}
		return c.JSON(response)
	}
}

// GetImport handles GET requests for a single import run.
func GetImport(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var run model.ScanImport
		rev, err := database.ReadDocumentRev(ctx, db, "scan_import", c.Params("key"), &run)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"message": "Import not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"import":  run,
			"rev":     rev,
		})
	}
}
