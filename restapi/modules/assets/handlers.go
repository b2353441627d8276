// Package assets implements the REST API handlers for asset operations.
package assets

import (
	"context"
	"errors"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/lifecycle"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// transitionRetries bounds how often a status update is recomputed after
// losing a revision race to a concurrent writer.
const transitionRetries = 3

// PostAsset handles POST requests for registering an asset.
// Assets always start their lifecycle as ACTIVE with an empty history.
func PostAsset(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Asset

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		req.NormalizeIdentity()
		if req.Hostname == "" && req.IPAddress == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Asset hostname or ip_address is required",
			})
		}
		if req.AssetType != "" && !req.AssetType.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid asset_type: " + string(req.AssetType),
			})
		}
		if req.Status != "" && req.Status != model.AssetStatusActive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "New assets start as ACTIVE; use PUT /assets/{key}/status to change status",
			})
		}

		ctx := context.Background()

		existingKey, err := database.FindAssetByIdentity(ctx, db.Database, req.Hostname, req.IPAddress)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to check for existing asset: " + err.Error(),
			})
		}
		if existingKey != "" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Asset already registered with this hostname/IP",
				"key":     existingKey,
			})
		}

		now := time.Now().UTC()
		req.Key = ""
		req.ObjType = "Asset"
		req.Status = model.AssetStatusActive
		req.StatusHistory = []model.StatusChangeEvent{}
		req.CreatedAt = now
		req.UpdatedAt = now

		meta, err := db.Collections["asset"].CreateDocument(ctx, req)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save asset: " + err.Error(),
			})
		}
		req.Key = meta.Key

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Asset registered successfully",
			"asset":   req,
		})
	}
}

// GetAssets handles GET requests for listing assets with optional filters.
func GetAssets(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		query := `FOR a IN asset`
		bindVars := map[string]interface{}{}

		if status := c.Query("status"); status != "" {
			parsed, err := model.ParseAssetStatus(status)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": err.Error(),
				})
			}
			query += ` FILTER a.status == @status`
			bindVars["status"] = parsed.String()
		}
		if assetType := c.Query("asset_type"); assetType != "" {
			query += ` FILTER a.asset_type == @asset_type`
			bindVars["asset_type"] = assetType
		}
		if environment := c.Query("environment"); environment != "" {
			query += ` FILTER a.environment == @environment`
			bindVars["environment"] = environment
		}
		if owner := c.Query("owner"); owner != "" {
			query += ` FILTER a.owner == @owner`
			bindVars["owner"] = owner
		}
		if tag := c.Query("tag"); tag != "" {
			query += ` FILTER @tag IN a.tags`
			bindVars["tag"] = util.NormalizeTag(tag)
		}
		if search := c.Query("search"); search != "" {
			query += ` FILTER LIKE(a.hostname, @search, true) OR LIKE(a.name, @search, true) OR LIKE(a.ip_address, @search, true)`
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

		query += ` SORT a.hostname ASC, a.ip_address ASC LIMIT @offset, @limit RETURN a`
		bindVars["offset"] = offset
		bindVars["limit"] = limit

		cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
			BindVars: bindVars,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query assets: " + err.Error(),
			})
		}
		defer cursor.Close()

		assets := []model.Asset{}
		for cursor.HasMore() {
			var asset model.Asset
			if _, err := cursor.ReadDocument(ctx, &asset); err != nil {
				continue
			}
			assets = append(assets, asset)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(assets),
			"assets":  assets,
		})
	}
}

// GetAsset handles GET requests for a single asset. The response carries the
// document revision so clients can pin expected_rev on later status updates.
func GetAsset(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var asset model.Asset
		rev, err := database.ReadDocumentRev(ctx, db, "asset", c.Params("key"), &asset)
		if err != nil {
			return respondAssetError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"asset":   asset,
			"rev":     rev,
		})
	}
}

// PutAsset handles PUT requests for updating asset metadata. Status is
// deliberately untouchable here; only the status endpoint moves it.
func PutAsset(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req model.Asset
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		ctx := context.Background()

		var existing model.Asset
		if _, err := database.ReadDocumentRev(ctx, db, "asset", key, &existing); err != nil {
			return respondAssetError(c, err)
		}

		if req.Status != "" && req.Status != existing.Status {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Status cannot be changed here; use PUT /assets/{key}/status",
			})
		}

		req.NormalizeIdentity()

		update := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if req.Name != "" {
			update["name"] = req.Name
		}
		if req.Hostname != "" {
			update["hostname"] = req.Hostname
			update["domain"] = req.Domain
		}
		if req.IPAddress != "" {
			update["ip_address"] = req.IPAddress
		}
		if req.AssetType != "" {
			if !req.AssetType.IsValid() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Invalid asset_type: " + string(req.AssetType),
				})
			}
			update["asset_type"] = req.AssetType
		}
		if req.Environment != "" {
			update["environment"] = req.Environment
		}
		if req.OperatingSystem != "" {
			update["operating_system"] = req.OperatingSystem
		}
		if req.OSVersion != "" {
			update["os_version"] = req.OSVersion
		}
		if req.Owner != "" {
			update["owner"] = req.Owner
		}
		if req.Tags != nil {
			update["tags"] = req.Tags
		}

		if _, err := db.Collections["asset"].UpdateDocument(ctx, key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update asset: " + err.Error(),
			})
		}

		var updated model.Asset
		rev, err := database.ReadDocumentRev(ctx, db, "asset", key, &updated)
		if err != nil {
			return respondAssetError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Asset updated successfully",
			"asset":   updated,
			"rev":     rev,
		})
	}
}

// PutAssetStatus handles PUT requests for moving an asset through its
// lifecycle. The transition is validated, recorded in the status history and
// written back with a revision check.
func PutAssetStatus(db database.DBConnection) fiber.Handler {
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
		status, err := model.ParseAssetStatus(req.Status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		ctx := context.Background()
		updated, rev, err := applyAssetTransition(ctx, db, key, lifecycle.Request{
			Status:  status.String(),
			ActorID: c.Get("X-Actor-Id"),
			Notes:   req.Notes,
		}, req.ExpectedRev)
		if err != nil {
			return respondAssetError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Asset status updated to " + status.String(),
			"asset":   updated,
			"rev":     rev,
		})
	}
}

// GetAssetTransitions handles GET requests for the statuses an asset can
// move to from its current status.
func GetAssetTransitions(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var asset model.Asset
		if _, err := database.ReadDocumentRev(ctx, db, "asset", c.Params("key"), &asset); err != nil {
			return respondAssetError(c, err)
		}

		current := string(asset.Status)
		return c.JSON(fiber.Map{
			"success": true,
			"transitions": model.AllowedTransitions{
				EntityKind: string(lifecycle.KindAsset),
				Current:    current,
				Allowed:    lifecycle.AllowedNextStatuses(lifecycle.KindAsset, current),
				Terminal:   lifecycle.IsTerminal(lifecycle.KindAsset, current),
			},
		})
	}
}

// GetAssetHistory handles GET requests for an asset's status audit trail.
func GetAssetHistory(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		var asset model.Asset
		if _, err := database.ReadDocumentRev(ctx, db, "asset", c.Params("key"), &asset); err != nil {
			return respondAssetError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":        true,
			"current_status": asset.Status,
			"count":          len(asset.StatusHistory),
			"status_history": asset.StatusHistory,
		})
	}
}

// DeleteAsset handles DELETE requests. Only decommissioned assets can be
// removed; everything else must go through the lifecycle first.
func DeleteAsset(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")
		ctx := context.Background()

		var asset model.Asset
		if _, err := database.ReadDocumentRev(ctx, db, "asset", key, &asset); err != nil {
			return respondAssetError(c, err)
		}
		if asset.Status != model.AssetStatusDecommissioned {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Only DECOMMISSIONED assets can be deleted; current status is " + string(asset.Status),
			})
		}

		if _, err := db.Collections["asset"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to delete asset: " + err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Asset deleted",
		})
	}
}

// applyAssetTransition reads the asset, applies the transition and writes the
// result back with a revision check. When the client did not pin a revision
// the transition is recomputed from a fresh snapshot after each conflict, up
// to transitionRetries times; a pinned revision conflicts immediately.
func applyAssetTransition(ctx context.Context, db database.DBConnection, key string, req lifecycle.Request, expectedRev string) (*model.Asset, string, error) {
	for attempt := 0; ; attempt++ {
		var asset model.Asset
		rev, err := database.ReadDocumentRev(ctx, db, "asset", key, &asset)
		if err != nil {
			return nil, "", err
		}
		if expectedRev != "" {
			rev = expectedRev
		}

		updated, err := lifecycle.TransitionAsset(asset, req, time.Now().UTC())
		if err != nil {
			return nil, "", err
		}

		newRev, err := database.ReplaceDocumentRevChecked(ctx, db, "asset", key, rev, updated)
		if err != nil {
			if errors.Is(err, database.ErrStaleEntity) && expectedRev == "" && attempt < transitionRetries {
				continue
			}
			return nil, "", err
		}
		return &updated, newRev, nil
	}
}

// respondAssetError maps lifecycle and storage errors onto HTTP responses.
func respondAssetError(c *fiber.Ctx, err error) error {
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
			"message":    "Asset was modified by another request; re-fetch and retry",
			"error_kind": "StaleEntity",
		})
	}

	if errors.Is(err, database.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Asset not found",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
