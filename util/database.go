// Package util provides utility functions for the backend.
//
//revive:disable-next-line:var-naming
package util

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
)

// SanitizeKey ensures the database key is valid for ArangoDB
// ArangoDB keys cannot contain spaces, slashes, or brackets
func SanitizeKey(key string) string {
	// 1. Trim whitespace/newlines first
	key = strings.TrimSpace(key)

	// 2. Use Replacer for cleaner, faster, multi-string replacement
	replacer := strings.NewReplacer(
		" ", "-",
		"/", "-",
		"[", "",
		"]", "",
		"(", "",
		")", "",
	)

	return replacer.Replace(key)
}

// ImportSourceMetadata stores the high-water mark for scan imports per source
type ImportSourceMetadata struct {
	Key          string `json:"_key"`          // e.g., "nessus", "openvas"
	LastImported string `json:"last_imported"` // RFC3339 Timestamp
	Type         string `json:"type"`          // "import_metadata"
}

// GetLastImportRun retrieves the timestamp of the last successful import for a source
func GetLastImportRun(db database.DBConnection, source string) (time.Time, error) {
	key := SanitizeKey(source)
	if key == "" {
		return time.Time{}, nil
	}

	ctx := context.Background()
	query := `RETURN DOCUMENT("metadata", @key)`
	bindVars := map[string]interface{}{"key": key}

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return time.Time{}, nil
	}
	defer cursor.Close()

	var meta ImportSourceMetadata
	if _, err := cursor.ReadDocument(ctx, &meta); err != nil {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, meta.LastImported)
}

// SaveLastImportRun updates the timestamp after a successful import
func SaveLastImportRun(db database.DBConnection, source string, lastImported time.Time) error {
	key := SanitizeKey(source)

	// Final safety check to prevent empty keys
	if key == "" {
		return fmt.Errorf("cannot save last import run for empty source key (original: %s)", source)
	}

	ctx := context.Background()
	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, last_imported: @time, type: "import_metadata" }
		UPDATE { last_imported: @time }
		IN metadata
	`

	bindVars := map[string]interface{}{
		"key":  key,
		"time": lastImported.Format(time.RFC3339),
	}

	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	return err
}
