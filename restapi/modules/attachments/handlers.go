// Package attachments implements the REST API handlers for attachment
// metadata. File content lives in an external blob store; only the reference
// is tracked here.
package attachments

import (
	"context"
	"errors"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// entityCollections maps an attachment's entity_kind onto the collection the
// owning entity lives in.
var entityCollections = map[string]string{
	"assessment":    "assessment",
	"asset":         "asset",
	"vulnerability": "vulnerability",
	"finding":       "finding",
}

// PostAttachment handles POST requests for recording attachment metadata.
func PostAttachment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Attachment

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.FileName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "file_name is required",
			})
		}
		collection, ok := entityCollections[req.EntityKind]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "entity_kind must be one of assessment, asset, vulnerability, finding",
			})
		}
		if req.EntityKey == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "entity_key is required",
			})
		}

		ctx := context.Background()

		var owner map[string]interface{}
		if _, err := database.ReadDocumentRev(ctx, db, collection, req.EntityKey, &owner); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Referenced " + req.EntityKind + " not found: " + req.EntityKey,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		now := time.Now().UTC()
		req.Key = ""
		req.ObjType = "Attachment"
		req.UploadedBy = c.Get("X-Actor-Id")
		req.CreatedAt = now
		req.UpdatedAt = now

		meta, err := db.Collections["attachment"].CreateDocument(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save attachment: " + err.Error(),
			})
		}
		req.Key = meta.Key

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"message":    "Attachment recorded successfully",
			"attachment": req,
		})
	}
}

// GetAttachments handles GET requests for listing attachment metadata,
// optionally scoped to one owning entity.
func GetAttachments(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR att IN attachment`
		bindVars := map[string]interface{}{}

		if entityKind := c.Query("entity_kind"); entityKind != "" {
			if _, ok := entityCollections[entityKind]; !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "entity_kind must be one of assessment, asset, vulnerability, finding",
				})
			}
			query += ` FILTER att.entity_kind == @entity_kind`
			bindVars["entity_kind"] = entityKind
		}
		if entityKey := c.Query("entity_key"); entityKey != "" {
			query += ` FILTER att.entity_key == @entity_key`
			bindVars["entity_key"] = entityKey
		}

		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 500 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		query += ` SORT att.created_at DESC LIMIT @offset, @limit RETURN att`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query attachments: " + err.Error(),
			})
		}
		defer cursor.Close()

		attachments := []model.Attachment{}
		for cursor.HasMore() {
			var attachment model.Attachment
			if _, err := cursor.ReadDocument(ctx, &attachment); err != nil {
				continue
			}
			attachments = append(attachments, attachment)
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"count":       len(attachments),
			"attachments": attachments,
		})
	}
}

// GetAttachment handles GET requests for a single attachment's metadata.
func GetAttachment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var attachment model.Attachment
		rev, err := database.ReadDocumentRev(ctx, db, "attachment", c.Params("key"), &attachment)
		if err != nil {
			return respondAttachmentError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"attachment": attachment,
			"rev":        rev,
		})
	}
}

// PutAttachment handles PUT requests for updating attachment metadata. The
// owning entity reference is fixed at creation.
func PutAttachment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req model.Attachment
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		ctx := context.Background()

		var existing model.Attachment
		if _, err := database.ReadDocumentRev(ctx, db, "attachment", key, &existing); err != nil {
			return respondAttachmentError(c, err)
		}

		if req.EntityKind != "" && req.EntityKind != existing.EntityKind {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "entity_kind cannot be changed",
			})
		}
		if req.EntityKey != "" && req.EntityKey != existing.EntityKey {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "entity_key cannot be changed",
			})
		}

		update := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if req.FileName != "" {
			update["file_name"] = req.FileName
		}
		if req.ContentType != "" {
			update["content_type"] = req.ContentType
		}
		if req.Description != "" {
			update["description"] = req.Description
		}
		if req.ContentSha != "" {
			update["content_sha"] = req.ContentSha
		}
		if req.SizeBytes > 0 {
			update["size_bytes"] = req.SizeBytes
		}
		if req.Storage.StorageType != "" {
			update["storage"] = req.Storage
		}

		if _, err := db.Collections["attachment"].UpdateDocument(ctx, key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update attachment: " + err.Error(),
			})
		}

		var updated model.Attachment
		rev, err := database.ReadDocumentRev(ctx, db, "attachment", key, &updated)
		if err != nil {
			return respondAttachmentError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"message":    "Attachment updated successfully",
			"attachment": updated,
			"rev":        rev,
		})
	}
}

// DeleteAttachment handles DELETE requests for attachment metadata.
func DeleteAttachment(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var attachment model.Attachment
		if _, err := database.ReadDocumentRev(ctx, db, "attachment", key, &attachment); err != nil {
			return respondAttachmentError(c, err)
		}

		if _, err := db.Collections["attachment"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete attachment: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Attachment deleted",
		})
	}
}

func respondAttachmentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Attachment not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
