// Package findings implements the REST API handlers for finding operations:
// creation, listing, the remediation workflow endpoints (mark-fixed,
// mark-verified, accept-risk, reopen) and the generic status transition.
package findings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	findingevents "github.com/iBuildiPawn/OSS-CYOPS-sub000/events/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/lifecycle"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

const transitionRetries = 3

// PostFinding handles POST requests for recording a finding. A finding is one
// vulnerability observed on one asset, keyed by (asset, vulnerability, port,
// protocol).
func PostFinding(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Finding

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.AssetKey == "" || req.VulnerabilityKey == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "asset_key and vulnerability_key are required",
			})
		}
		if req.Status != "" && req.Status != model.FindingStatusOpen {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "New findings start as OPEN; use the workflow endpoints to change status",
			})
		}

		ctx := context.Background()

		var asset model.Asset
		if _, err := database.ReadDocumentRev(ctx, db, "asset", req.AssetKey, &asset); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Referenced asset not found: " + req.AssetKey,
				})
			}
			return respondFindingError(c, err)
		}

		var vulnerability model.Vulnerability
		if _, err := database.ReadDocumentRev(ctx, db, "vulnerability", req.VulnerabilityKey, &vulnerability); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Referenced vulnerability not found: " + req.VulnerabilityKey,
				})
			}
			return respondFindingError(c, err)
		}

		existingKey, err := database.FindFindingByInstance(ctx, db.Database, req.AssetKey, req.VulnerabilityKey, req.Port, req.Protocol)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check for existing finding: " + err.Error(),
			})
		}
		if existingKey != "" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Finding already recorded for this asset and vulnerability",
				"key":     existingKey,
			})
		}

		// Snapshot title and severity from the vulnerability so the finding
		// stays meaningful even if the vulnerability record changes later.
		if req.Title == "" {
			req.Title = vulnerability.Title
		}
		if req.Severity == "" {
			req.Severity = vulnerability.Severity
		}
		req.Severity = strings.ToUpper(req.Severity)

		now := time.Now().UTC()
		req.Key = ""
		req.ObjType = "Finding"
		req.Status = model.FindingStatusOpen
		req.StatusHistory = []model.StatusChangeEvent{}
		req.FixedAt = nil
		req.FixNotes = ""
		req.VerifiedAt = nil
		req.RiskAcceptedAt = nil
		req.AcceptanceReason = ""
		req.ExpiresAt = nil
		req.FirstSeenAt = &now
		req.LastSeenAt = &now
		req.CreatedAt = now
		req.UpdatedAt = now

		meta, err := db.Collections["finding"].CreateDocument(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save finding: " + err.Error(),
			})
		}
		req.Key = meta.Key

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Finding recorded successfully",
			"finding": req,
		})
	}
}

// GetFindings handles GET requests for listing findings filtered by
// assessment, asset, vulnerability, status or severity.
func GetFindings(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR f IN finding`
		bindVars := map[string]interface{}{}

		if assessment := c.Query("assessment"); assessment != "" {
			query += ` FILTER f.assessment_key == @assessment`
			bindVars["assessment"] = assessment
		}
		if asset := c.Query("asset"); asset != "" {
			query += ` FILTER f.asset_key == @asset`
			bindVars["asset"] = asset
		}
		if vulnerability := c.Query("vulnerability"); vulnerability != "" {
			query += ` FILTER f.vulnerability_key == @vulnerability`
			bindVars["vulnerability"] = vulnerability
		}
		if status := c.Query("status"); status != "" {
			parsed, err := model.ParseFindingStatus(status)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": err.Error(),
				})
			}
			query += ` FILTER f.status == @status`
			bindVars["status"] = parsed.String()
		}
		if severity := c.Query("severity"); severity != "" {
			query += ` FILTER f.severity == UPPER(@severity)`
			bindVars["severity"] = severity
		}

		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 500 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		query += ` SORT f.created_at DESC LIMIT @offset, @limit RETURN f`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query findings: " + err.Error(),
			})
		}
		defer cursor.Close()

		results := []model.Finding{}
		for cursor.HasMore() {
			var finding model.Finding
			if _, err := cursor.ReadDocument(ctx, &finding); err != nil {
				continue
			}
			results = append(results, finding)
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"count":    len(results),
			"findings": results,
		})
	}
}

// GetFinding handles GET requests for a single finding.
func GetFinding(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var finding model.Finding
		rev, err := database.ReadDocumentRev(ctx, db, "finding", c.Params("key"), &finding)
		if err != nil {
			return respondFindingError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"finding": finding,
			"rev":     rev,
		})
	}
}

// GetFindingTransitions handles GET requests for the statuses a finding can
// move to from its current status.
func GetFindingTransitions(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var finding model.Finding
		if _, err := database.ReadDocumentRev(ctx, db, "finding", c.Params("key"), &finding); err != nil {
			return respondFindingError(c, err)
		}

		current := string(finding.Status)
		return c.JSON(fiber.Map{
			"success": true,
			"transitions": model.AllowedTransitions{
				EntityKind: string(lifecycle.KindFinding),
				Current:    current,
				Allowed:    lifecycle.AllowedNextStatuses(lifecycle.KindFinding, current),
				Terminal:   lifecycle.IsTerminal(lifecycle.KindFinding, current),
			},
		})
	}
}

// GetFindingHistory handles GET requests for a finding's status audit trail.
func GetFindingHistory(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var finding model.Finding
		if _, err := database.ReadDocumentRev(ctx, db, "finding", c.Params("key"), &finding); err != nil {
			return respondFindingError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"current_status": finding.Status,
			"count":          len(finding.StatusHistory),
			"status_history": finding.StatusHistory,
		})
	}
}

// PatchFindingStatus handles PATCH requests for the generic status endpoint.
// Transitions that need extra fields (fix notes, acceptance reason) fail here
// unless the dedicated workflow endpoint is used.
func PatchFindingStatus(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
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
		status, err := model.ParseFindingStatus(req.Status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return runFindingTransition(c, db, lifecycle.FindingRequest{
			Request: lifecycle.Request{
				Status:  status.String(),
				ActorID: c.Get("X-Actor-Id"),
				Notes:   req.Notes,
			},
		}, req.ExpectedRev, "Finding status updated to "+status.String())
	}
}

// PostMarkFixed handles POST requests for marking a finding FIXED with the
// required fix notes.
func PostMarkFixed(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.MarkFixedRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		return runFindingTransition(c, db, lifecycle.FindingRequest{
			Request: lifecycle.Request{
				Status:  model.FindingStatusFixed.String(),
				ActorID: c.Get("X-Actor-Id"),
				Notes:   req.Notes,
			},
			FixNotes: req.FixNotes,
		}, req.ExpectedRev, "Finding marked as fixed")
	}
}

// PostMarkVerified handles POST requests for verifying a fix.
func PostMarkVerified(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.MarkVerifiedRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		return runFindingTransition(c, db, lifecycle.FindingRequest{
			Request: lifecycle.Request{
				Status:  model.FindingStatusVerified.String(),
				ActorID: c.Get("X-Actor-Id"),
				Notes:   req.Notes,
			},
		}, req.ExpectedRev, "Finding fix verified")
	}
}

// PostAcceptRisk handles POST requests for accepting the risk of a finding,
// with a required reason and an optional expiry.
func PostAcceptRisk(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AcceptRiskRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		return runFindingTransition(c, db, lifecycle.FindingRequest{
			Request: lifecycle.Request{
				Status:  model.FindingStatusRiskAccepted.String(),
				ActorID: c.Get("X-Actor-Id"),
				Notes:   req.Notes,
			},
			AcceptanceReason: req.AcceptanceReason,
			ExpiresAt:        req.ExpiresAt,
		}, req.ExpectedRev, "Finding risk accepted")
	}
}

// PostReopen handles POST requests for reopening a finding. Reopening clears
// the remediation fields; the status history keeps the full trail.
func PostReopen(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ReopenRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		return runFindingTransition(c, db, lifecycle.FindingRequest{
			Request: lifecycle.Request{
				Status:  model.FindingStatusOpen.String(),
				ActorID: c.Get("X-Actor-Id"),
				Notes:   req.Notes,
			},
		}, req.ExpectedRev, "Finding reopened")
	}
}

// DeleteFinding handles DELETE requests. Findings are the audit record, so
// only FALSE_POSITIVE findings can be removed.
func DeleteFinding(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var finding model.Finding
		if _, err := database.ReadDocumentRev(ctx, db, "finding", key, &finding); err != nil {
			return respondFindingError(c, err)
		}

		if finding.Status != model.FindingStatusFalsePositive {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Only FALSE_POSITIVE findings can be deleted; current status is " + string(finding.Status),
			})
		}

		if _, err := db.Collections["finding"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete finding: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Finding deleted",
		})
	}
}

func runFindingTransition(c *fiber.Ctx, db database.DBConnection, req lifecycle.FindingRequest, expectedRev, message string) error {
	ctx := context.Background()

	updated, rev, err := applyFindingTransition(ctx, db, c.Params("key"), req, expectedRev)
	if err != nil {
		return respondFindingError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"finding": updated,
		"rev":     rev,
	})
}

// applyFindingTransition reads the finding, applies the transition and writes
// the result back with a revision check, retrying from a fresh snapshot on
// unpinned conflicts. A successful write publishes a status change event.
func applyFindingTransition(ctx context.Context, db database.DBConnection, key string, req lifecycle.FindingRequest, expectedRev string) (*model.Finding, string, error) {
	for attempt := 0; ; attempt++ {
		var finding model.Finding
		rev, err := database.ReadDocumentRev(ctx, db, "finding", key, &finding)
		if err != nil {
			return nil, "", err
		}
		if expectedRev != "" {
			rev = expectedRev
		}

		updated, err := lifecycle.TransitionFinding(finding, req, time.Now().UTC())
		if err != nil {
			return nil, "", err
		}

		newRev, err := database.ReplaceDocumentRevChecked(ctx, db, "finding", key, rev, updated)
		if err != nil {
			if errors.Is(err, database.ErrStaleEntity) && expectedRev == "" && attempt < transitionRetries {
				continue
			}
			return nil, "", err
		}

		change := updated.StatusHistory[len(updated.StatusHistory)-1]
		if err := findingevents.PublishStatusChanged(ctx, updated, change); err != nil {
			fmt.Printf("Warning: Failed to publish status event for finding %s: %v\n", key, err)
		}

		return &updated, newRev, nil
	}
}

// respondFindingError maps lifecycle and storage errors onto HTTP responses.
func respondFindingError(c *fiber.Ctx, err error) error {
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
			"message":    "Finding was modified by another request; re-fetch and retry",
			"error_kind": "StaleEntity",
		})
	}

	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Finding not found",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
