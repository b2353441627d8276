// Package vulnerabilities implements the REST API handlers for vulnerability
// operations: CRUD, triage status transitions and the status audit trail.
package vulnerabilities

import (
	"context"
	"errors"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/lifecycle"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

const transitionRetries = 3

// PostVulnerability handles POST requests for recording a vulnerability.
// CVE ID is the primary dedup key; scanner plugin identity is the fallback.
func PostVulnerability(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Vulnerability

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Vulnerability title is required",
			})
		}
		if req.Status != "" && req.Status != model.VulnerabilityStatusOpen {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "New vulnerabilities start as OPEN; use PATCH /vulnerabilities/{key}/status to change status",
			})
		}

		ctx := context.Background()

		var existingKey string
		var err error
		if req.CveID != "" {
			existingKey, err = database.FindVulnerabilityByCVE(ctx, db.Database, req.CveID)
		} else if req.Scanner != "" && req.PluginID != "" {
			existingKey, err = database.FindVulnerabilityByPlugin(ctx, db.Database, req.Scanner, req.PluginID)
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check for existing vulnerability: " + err.Error(),
			})
		}
		if existingKey != "" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Vulnerability already recorded",
				"key":     existingKey,
			})
		}

		now := time.Now().UTC()
		req.Key = ""
		req.ObjType = "Vulnerability"
		req.Status = model.VulnerabilityStatusOpen
		req.StatusHistory = []model.StatusChangeEvent{}
		req.CreatedAt = now
		req.UpdatedAt = now
		req.EnrichScore()

		meta, err := db.Collections["vulnerability"].CreateDocument(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save vulnerability: " + err.Error(),
			})
		}
		req.Key = meta.Key

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":       true,
			"message":       "Vulnerability recorded successfully",
			"vulnerability": req,
		})
	}
}

// GetVulnerabilities handles GET requests for listing vulnerabilities with
// optional filters, sorted by CVSS base score descending.
func GetVulnerabilities(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR v IN vulnerability`
		bindVars := map[string]interface{}{}

		if status := c.Query("status"); status != "" {
			parsed, err := model.ParseVulnerabilityStatus(status)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": err.Error(),
				})
			}
			query += ` FILTER v.status == @status`
			bindVars["status"] = parsed.String()
		}
		if severity := c.Query("severity"); severity != "" {
			query += ` FILTER v.severity == UPPER(@severity)`
			bindVars["severity"] = severity
		}
		if scanner := c.Query("scanner"); scanner != "" {
			query += ` FILTER v.scanner == @scanner`
			bindVars["scanner"] = scanner
		}
		if cveID := c.Query("cve_id"); cveID != "" {
			query += ` FILTER v.cve_id == @cve_id`
			bindVars["cve_id"] = cveID
		}
		if minScore := c.QueryFloat("min_score", 0); minScore > 0 {
			query += ` FILTER v.cvss_base_score >= @min_score`
			bindVars["min_score"] = minScore
		}
		if search := c.Query("search"); search != "" {
			query += ` FILTER LIKE(v.title, @search, true) OR LIKE(v.cve_id, @search, true)`
			bindVars["search"] = "%" + search + "%"
		}

		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 500 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		query += ` SORT v.cvss_base_score DESC, v.title ASC LIMIT @offset, @limit RETURN v`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query vulnerabilities: " + err.Error(),
			})
		}
		defer cursor.Close()

		vulnerabilities := []model.Vulnerability{}
		for cursor.HasMore() {
			var vulnerability model.Vulnerability
			if _, err := cursor.ReadDocument(ctx, &vulnerability); err != nil {
				continue
			}
			vulnerabilities = append(vulnerabilities, vulnerability)
		}

		return c.JSON(fiber.Map{
			"success":         true,
			"count":           len(vulnerabilities),
			"vulnerabilities": vulnerabilities,
		})
	}
}

// GetVulnerability handles GET requests for a single vulnerability.
func GetVulnerability(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var vulnerability model.Vulnerability
		rev, err := database.ReadDocumentRev(ctx, db, "vulnerability", c.Params("key"), &vulnerability)
		if err != nil {
			return respondVulnerabilityError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"vulnerability": vulnerability,
			"rev":           rev,
		})
	}
}

// PutVulnerability handles PUT requests for updating vulnerability metadata.
// A changed CVSS vector re-derives the base score and severity rating.
func PutVulnerability(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req model.Vulnerability
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		ctx := context.Background()

		var existing model.Vulnerability
		if _, err := database.ReadDocumentRev(ctx, db, "vulnerability", key, &existing); err != nil {
			return respondVulnerabilityError(c, err)
		}

		if req.Status != "" && req.Status != existing.Status {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Status cannot be changed here; use PATCH /vulnerabilities/{key}/status",
			})
		}

		update := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if req.Title != "" {
			update["title"] = req.Title
		}
		if req.Description != "" {
			update["description"] = req.Description
		}
		if req.CveID != "" {
			update["cve_id"] = req.CveID
		}
		if req.CweID != "" {
			update["cwe_id"] = req.CweID
		}
		if req.Remediation != "" {
			update["remediation"] = req.Remediation
		}
		if req.References != nil {
			update["references"] = req.References
		}
		if req.Affected != nil {
			update["affected"] = req.Affected
		}
		if req.CVSSVector != "" && req.CVSSVector != existing.CVSSVector {
			req.EnrichScore()
			update["cvss_vector"] = req.CVSSVector
			update["cvss_base_score"] = req.CVSSBaseScore
			update["severity"] = req.Severity
		} else if req.Severity != "" {
			req.EnrichScore()
			update["severity"] = req.Severity
		}

		if _, err := db.Collections["vulnerability"].UpdateDocument(ctx, key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update vulnerability: " + err.Error(),
			})
		}

		var updated model.Vulnerability
		rev, err := database.ReadDocumentRev(ctx, db, "vulnerability", key, &updated)
		if err != nil {
			return respondVulnerabilityError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"message":       "Vulnerability updated successfully",
			"vulnerability": updated,
			"rev":           rev,
		})
	}
}

// PatchVulnerabilityStatus handles PATCH requests for moving a vulnerability
// through triage.
func PatchVulnerabilityStatus(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req model.StatusUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "status is required",
			})
		}
		status, err := model.ParseVulnerabilityStatus(req.Status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		ctx := context.Background()
		updated, rev, err := applyVulnerabilityTransition(ctx, db, key, lifecycle.Request{
			Status:  status.String(),
			ActorID: c.Get("X-Actor-Id"),
			Notes:   req.Notes,
		}, req.ExpectedRev)
		if err != nil {
			return respondVulnerabilityError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":       true,
			"message":       "Vulnerability status updated to " + status.String(),
			"vulnerability": updated,
			"rev":           rev,
		})
	}
}

// GetVulnerabilityTransitions handles GET requests for the statuses a
// vulnerability can move to from its current status.
func GetVulnerabilityTransitions(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var vulnerability model.Vulnerability
		if _, err := database.ReadDocumentRev(ctx, db, "vulnerability", c.Params("key"), &vulnerability); err != nil {
			return respondVulnerabilityError(c, err)
		}

		current := string(vulnerability.Status)
		return c.JSON(fiber.Map{
			"success": true,
			"transitions": model.AllowedTransitions{
				EntityKind: string(lifecycle.KindVulnerability),
				Current:    current,
				Allowed:    lifecycle.AllowedNextStatuses(lifecycle.KindVulnerability, current),
				Terminal:   lifecycle.IsTerminal(lifecycle.KindVulnerability, current),
			},
		})
	}
}

// GetVulnerabilityHistory handles GET requests for a vulnerability's status
// audit trail.
func GetVulnerabilityHistory(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var vulnerability model.Vulnerability
		if _, err := database.ReadDocumentRev(ctx, db, "vulnerability", c.Params("key"), &vulnerability); err != nil {
			return respondVulnerabilityError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"current_status": vulnerability.Status,
			"count":          len(vulnerability.StatusHistory),
			"status_history": vulnerability.StatusHistory,
		})
	}
}

// DeleteVulnerability handles DELETE requests. A vulnerability with findings
// still referencing it cannot be removed.
func DeleteVulnerability(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var vulnerability model.Vulnerability
		if _, err := database.ReadDocumentRev(ctx, db, "vulnerability", key, &vulnerability); err != nil {
			return respondVulnerabilityError(c, err)
		}

		count, err := countFindingsForVulnerability(ctx, db, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check for findings: " + err.Error(),
			})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":       false,
				"message":       "Vulnerability still has findings referencing it",
				"finding_count": count,
			})
		}

		if _, err := db.Collections["vulnerability"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete vulnerability: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Vulnerability deleted",
		})
	}
}

func countFindingsForVulnerability(ctx context.Context, db database.DBConnection, vulnerabilityKey string) (int, error) {
	query := `
		RETURN LENGTH(
			FOR f IN finding
				FILTER f.vulnerability_key == @key
				RETURN 1
		)
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": vulnerabilityKey,
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
}

// applyVulnerabilityTransition reads the vulnerability, applies the
// transition and writes the result back with a revision check, retrying from
// a fresh snapshot on unpinned conflicts.
func applyVulnerabilityTransition(ctx context.Context, db database.DBConnection, key string, req lifecycle.Request, expectedRev string) (*model.Vulnerability, string, error) {
	for attempt := 0; ; attempt++ {
		var vulnerability model.Vulnerability
		rev, err := database.ReadDocumentRev(ctx, db, "vulnerability", key, &vulnerability)
		if err != nil {
			return nil, "", err
		}
		if expectedRev != "" {
			rev = expectedRev
		}

		updated, err := lifecycle.TransitionVulnerability(vulnerability, req, time.Now().UTC())
		if err != nil {
			return nil, "", err
		}

		newRev, err := database.ReplaceDocumentRevChecked(ctx, db, "vulnerability", key, rev, updated)
		if err != nil {
			if errors.Is(err, database.ErrStaleEntity) && expectedRev == "" && attempt < transitionRetries {
				continue
			}
			return nil, "", err
		}
		return &updated, newRev, nil
	}
}

// respondVulnerabilityError maps lifecycle and storage errors onto HTTP
// responses.
func respondVulnerabilityError(c *fiber.Ctx, err error) error {
	var invalid *lifecycle.InvalidTransitionError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success":               false,
			"message":               invalid.Reason,
			"error_kind":            "InvalidTransition",
			"current_status":        invalid.Current,
			"allowed_next_statuses": lifecycle.AllowedNextStatuses(invalid.Kind, invalid.Current),
		})
	}

	var missing *lifecycle.MissingRequiredFieldError
	if errors.As(err, &missing) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"message":    missing.Reason,
			"error_kind": "MissingRequiredField",
			"field":      missing.Field,
		})
	}

	if errors.Is(err, database.ErrStaleEntity) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":    false,
			"message":    "Vulnerability was modified by another request; re-fetch and retry",
			"error_kind": "StaleEntity",
		})
	}

	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Vulnerability not found",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
