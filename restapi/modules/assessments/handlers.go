// Package assessments implements the REST API handlers for assessment
// operations. Assessments group findings under one engagement.
package assessments

import (
	"context"
	"errors"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// PostAssessment handles POST requests for creating an assessment.
func PostAssessment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Assessment

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Assessment name is required",
			})
		}
		if req.AssessmentType == "" {
			req.AssessmentType = model.AssessmentTypeVulnScan
		}
		if !req.AssessmentType.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid assessment_type: " + string(req.AssessmentType),
			})
		}
		if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "end_date must not be before start_date",
			})
		}

		now := time.Now().UTC()
		req.Key = ""
		req.ObjType = "Assessment"
		req.CompletedAt = nil
		req.CreatedAt = now
		req.UpdatedAt = now
		if req.Scope == nil {
			req.Scope = []string{}
		}

		ctx := context.Background()
		meta, err := db.Collections["assessment"].CreateDocument(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save assessment: " + err.Error(),
			})
		}
		req.Key = meta.Key

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"message":    "Assessment created successfully",
			"assessment": req,
		})
	}
}

// GetAssessments handles GET requests for listing assessments.
func GetAssessments(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR a IN assessment`
		bindVars := map[string]interface{}{}

		if assessmentType := c.Query("assessment_type"); assessmentType != "" {
			query += ` FILTER a.assessment_type == @assessment_type`
			bindVars["assessment_type"] = assessmentType
		}
		if completed := c.Query("completed"); completed != "" {
			if completed == "true" {
				query += ` FILTER a.completed_at != null`
			} else {
				query += ` FILTER a.completed_at == null`
			}
		}
		if search := c.Query("search"); search != "" {
			query += ` FILTER LIKE(a.name, @search, true)`
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

		query += ` SORT a.created_at DESC LIMIT @offset, @limit RETURN a`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query assessments: " + err.Error(),
			})
		}
		defer cursor.Close()

		assessments := []model.Assessment{}
		for cursor.HasMore() {
			var assessment model.Assessment
			if _, err := cursor.ReadDocument(ctx, &assessment); err != nil {
				continue
			}
			assessments = append(assessments, assessment)
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"count":       len(assessments),
			"assessments": assessments,
		})
	}
}

// GetAssessment handles GET requests for a single assessment.
func GetAssessment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var assessment model.Assessment
		rev, err := database.ReadDocumentRev(ctx, db, "assessment", c.Params("key"), &assessment)
		if err != nil {
			return respondAssessmentError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"assessment": assessment,
			"rev":        rev,
		})
	}
}

// PutAssessment handles PUT requests for updating assessment metadata.
func PutAssessment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req model.Assessment
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		ctx := context.Background()

		var existing model.Assessment
		if _, err := database.ReadDocumentRev(ctx, db, "assessment", key, &existing); err != nil {
			return respondAssessmentError(c, err)
		}

		update := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if req.Name != "" {
			update["name"] = req.Name
		}
		if req.Description != "" {
			update["description"] = req.Description
		}
		if req.AssessmentType != "" {
			if !req.AssessmentType.IsValid() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Invalid assessment_type: " + string(req.AssessmentType),
				})
			}
			update["assessment_type"] = req.AssessmentType
		}
		if req.Scope != nil {
			update["scope"] = req.Scope
		}
		if req.StartDate != nil {
			update["start_date"] = req.StartDate
		}
		if req.EndDate != nil {
			update["end_date"] = req.EndDate
		}

		if _, err := db.Collections["assessment"].UpdateDocument(ctx, key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update assessment: " + err.Error(),
			})
		}

		var updated model.Assessment
		rev, err := database.ReadDocumentRev(ctx, db, "assessment", key, &updated)
		if err != nil {
			return respondAssessmentError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"message":    "Assessment updated successfully",
			"assessment": updated,
			"rev":        rev,
		})
	}
}

// PostCompleteAssessment handles POST requests for marking an assessment
// complete. Completing twice is rejected.
func PostCompleteAssessment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var assessment model.Assessment
		if _, err := database.ReadDocumentRev(ctx, db, "assessment", key, &assessment); err != nil {
			return respondAssessmentError(c, err)
		}
		if assessment.CompletedAt != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":      false,
				"message":      "Assessment is already completed",
				"completed_at": assessment.CompletedAt,
			})
		}

		now := time.Now().UTC()
		update := map[string]interface{}{
			"completed_at": now,
			"updated_at":   now,
		}
		if _, err := db.Collections["assessment"].UpdateDocument(ctx, key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update assessment: " + err.Error(),
			})
		}

		var updated model.Assessment
		rev, err := database.ReadDocumentRev(ctx, db, "assessment", key, &updated)
		if err != nil {
			return respondAssessmentError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"message":    "Assessment completed",
			"assessment": updated,
			"rev":        rev,
		})
	}
}

// DeleteAssessment handles DELETE requests. An assessment with findings still
// attached cannot be removed.
func DeleteAssessment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var assessment model.Assessment
		if _, err := database.ReadDocumentRev(ctx, db, "assessment", key, &assessment); err != nil {
			return respondAssessmentError(c, err)
		}

		count, err := countFindingsForAssessment(ctx, db, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check for findings: " + err.Error(),
			})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":       false,
				"message":       "Assessment still has findings attached",
				"finding_count": count,
			})
		}

		if _, err := db.Collections["assessment"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete assessment: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Assessment deleted",
		})
	}
}

func countFindingsForAssessment(ctx context.Context, db database.DBConnection, assessmentKey string) (int, error) {
	query := `
		RETURN LENGTH(
			FOR f IN finding
				FILTER f.assessment_key == @key
				RETURN 1
		)
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key": assessmentKey,
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

func respondAssessmentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Assessment not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
