// Package model defines the data structures used by the backend,
// including assessments, assets, vulnerabilities, and findings.
package model

import "time"

// StorageRef points at attachment content living in an external blob store.
// The backend only tracks the reference; bytes never pass through it.
type StorageRef struct {
	StorageType string `json:"storage_type"`         // Backing store kind (e.g., "s3", "minio", "gcs").
	Bucket      string `json:"bucket,omitempty"`     // Bucket or container holding the object.
	ObjectKey   string `json:"object_key,omitempty"` // Object key within the bucket.
}

// Attachment is the metadata record for a report, screenshot or evidence file
// linked to an assessment, asset, vulnerability or finding.
type Attachment struct {
	Key         string     `json:"_key,omitempty"`        // Unique identifier of the attachment in the database.
	FileName    string     `json:"file_name"`             // Original file name as uploaded.
	ContentType string     `json:"content_type,omitempty"` // MIME type reported at upload time.
	SizeBytes   int64      `json:"size_bytes"`            // Object size in bytes.
	ContentSha  string     `json:"content_sha,omitempty"` // SHA-256 of the content for integrity checks.
	EntityKind  string     `json:"entity_kind"`           // Kind of the owning entity ("assessment", "asset", "vulnerability", "finding").
	EntityKey   string     `json:"entity_key"`            // Key of the owning entity.
	UploadedBy  string     `json:"uploaded_by,omitempty"` // Actor who uploaded the file.
	Description string     `json:"description,omitempty"` // Optional caption.
	Storage     StorageRef `json:"storage"`               // Where the bytes actually live.
	ObjType     string     `json:"objtype,omitempty"`     // The object type for database indexing (should be "Attachment").

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAttachment creates a new Attachment instance with default values
func NewAttachment() *Attachment {
	now := time.Now()
	return &Attachment{
		ObjType:   "Attachment",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
