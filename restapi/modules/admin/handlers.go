// Package admin implements the REST API handlers for admin operations.
// It provides endpoints for remediation backfill processing and status
// monitoring.
package admin

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

var backfillRunning = false
var backfillProgress = ""

// BackfillRequest bounds how far back the backfill walks finding histories.
type BackfillRequest struct {
	DaysBack int `json:"days_back"`
}

// BackfillStatusResponse reports whether a backfill is running and how far it got.
type BackfillStatusResponse struct {
	Running bool   `json:"running"`
	Status  string `json:"status"`
}

// PostBackfillRemediation triggers the remediation backfill: findings whose
// status or lifecycle timestamps disagree with their status history are
// repaired from the history, which is the source of truth.
func PostBackfillRemediation(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if backfillRunning {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Backfill already in progress",
				"status":  backfillProgress,
			})
		}

		var req BackfillRequest
		if err := c.BodyParser(&req); err != nil {
			req.DaysBack = 90
		}
		if req.DaysBack == 0 {
			req.DaysBack = 90
		}

		if req.DaysBack < 0 || req.DaysBack > 365 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "days_back must be between 1 and 365",
			})
		}

		go runRemediationBackfill(db, req.DaysBack)

		return c.JSON(fiber.Map{
			"success": true,
			"message": fmt.Sprintf("Backfill started for %d days of history", req.DaysBack),
			"status":  "processing",
		})
	}
}

// GetBackfillStatus returns the current status of any running backfill
func GetBackfillStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(BackfillStatusResponse{
			Running: backfillRunning,
			Status:  backfillProgress,
		})
	}
}

func runRemediationBackfill(db database.DBConnection, daysBack int) {
	backfillRunning = true
	backfillProgress = fmt.Sprintf("Starting backfill for %d days...", daysBack)

	ctx := context.Background()
	cutoffDate := time.Now().UTC().AddDate(0, 0, -daysBack)

	log.Printf("Starting remediation backfill for last %d days...", daysBack)

	query := `
		FOR f IN finding
			FILTER DATE_TIMESTAMP(f.updated_at) >= @cutoffDate
			RETURN f
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"cutoffDate": cutoffDate.Unix() * 1000,
		},
	})
	if err != nil {
		backfillProgress = fmt.Sprintf("Failed: %v", err)
		backfillRunning = false
		log.Printf("Backfill failed: %v", err)
		return
	}
	defer cursor.Close()

	var findings []model.Finding
	for cursor.HasMore() {
		var finding model.Finding
		if _, err := cursor.ReadDocument(ctx, &finding); err == nil {
			findings = append(findings, finding)
		}
	}

	backfillProgress = fmt.Sprintf("Processing %d findings...", len(findings))
	log.Printf("Processing %d findings", len(findings))

	statusesRepaired := 0
	timestampsRepaired := 0

	for i, finding := range findings {
		if i%100 == 0 {
			backfillProgress = fmt.Sprintf("Processing finding %d/%d", i+1, len(findings))
		}

		update := map[string]interface{}{}

		expected := model.LastStatus(finding.StatusHistory, model.FindingStatusOpen.String())
		if string(finding.Status) != expected {
			update["status"] = expected
			statusesRepaired++
		}

		if repairTimestamps(finding, model.FindingStatus(expected), update) {
			timestampsRepaired++
		}

		if len(update) > 0 {
			update["updated_at"] = time.Now().UTC()
			if _, err := db.Collections["finding"].UpdateDocument(ctx, finding.Key, update); err != nil {
				log.Printf("Backfill: failed to repair finding %s: %v", finding.Key, err)
			}
		}
	}

	backfillProgress = fmt.Sprintf("Complete! Statuses repaired: %d, Timestamps repaired: %d",
		statusesRepaired, timestampsRepaired)
	backfillRunning = false

	log.Printf("Backfill complete! Statuses repaired: %d, Timestamps repaired: %d",
		statusesRepaired, timestampsRepaired)
}

// repairTimestamps reconciles the lifecycle timestamp fields with what the
// status history says. Returns true when anything needed repair.
func repairTimestamps(finding model.Finding, status model.FindingStatus, update map[string]interface{}) bool {
	repaired := false

	switch status {
	case model.FindingStatusOpen, model.FindingStatusMitigated:
		// Remediation claims were cleared on reopen; stale fields mean a
		// direct write bypassed the transition recorder at some point.
		if finding.FixedAt != nil {
			update["fixed_at"] = nil
			repaired = true
		}
		if finding.FixNotes != "" {
			update["fix_notes"] = ""
			repaired = true
		}
		if finding.VerifiedAt != nil {
			update["verified_at"] = nil
			repaired = true
		}
		if finding.RiskAcceptedAt != nil {
			update["risk_accepted_at"] = nil
			repaired = true
		}
		if finding.AcceptanceReason != "" {
			update["acceptance_reason"] = ""
			repaired = true
		}
		if finding.ExpiresAt != nil {
			update["expires_at"] = nil
			repaired = true
		}

	case model.FindingStatusFixed:
		if fixedAt := lastEntered(finding.StatusHistory, model.FindingStatusFixed); fixedAt != nil {
			if finding.FixedAt == nil || !finding.FixedAt.Equal(*fixedAt) {
				update["fixed_at"] = fixedAt
				repaired = true
			}
		}
		if finding.VerifiedAt != nil {
			update["verified_at"] = nil
			repaired = true
		}

	case model.FindingStatusVerified:
		if fixedAt := lastEntered(finding.StatusHistory, model.FindingStatusFixed); fixedAt != nil {
			if finding.FixedAt == nil || !finding.FixedAt.Equal(*fixedAt) {
				update["fixed_at"] = fixedAt
				repaired = true
			}
		}
		if verifiedAt := lastEntered(finding.StatusHistory, model.FindingStatusVerified); verifiedAt != nil {
			if finding.VerifiedAt == nil || !finding.VerifiedAt.Equal(*verifiedAt) {
				update["verified_at"] = verifiedAt
				repaired = true
			}
		}

	case model.FindingStatusRiskAccepted:
		if acceptedAt := lastEntered(finding.StatusHistory, model.FindingStatusRiskAccepted); acceptedAt != nil {
			if finding.RiskAcceptedAt == nil || !finding.RiskAcceptedAt.Equal(*acceptedAt) {
				update["risk_accepted_at"] = acceptedAt
				repaired = true
			}
		}
	}

	return repaired
}

// lastEntered returns when the history last moved into the given status.
func lastEntered(history []model.StatusChangeEvent, status model.FindingStatus) *time.Time {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].NewStatus == status.String() {
			occurredAt := history[i].OccurredAt
			return &occurredAt
		}
	}
	return nil
}
