// Package services provides internal service implementations shared by the
// REST API and the Kafka worker.
package services

import (
	"context"
	"log"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	scan "github.com/iBuildiPawn/OSS-CYOPS-sub000/events/modules/scans"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi/modules/imports"
)

// ScanImportServiceWrapper implements scan.ScanImporter
type ScanImportServiceWrapper struct {
	DB database.DBConnection
}

// ImportScan reconciles a scan document by delegating to the shared core
// logic in the imports module. Kafka-driven submissions get the same dedup,
// lifecycle transitions and policy handling as the REST API.
func (w *ScanImportServiceWrapper) ImportScan(ctx context.Context, doc model.ScanDocument, actorID string) (*model.ScanImport, error) {
	log.Printf("Worker: Processing %s scan import", doc.Source)
	return imports.ProcessScanImport(ctx, w.DB, doc, actorID)
}

// Ensure compile-time interface check
var _ scan.ScanImporter = (*ScanImportServiceWrapper)(nil)
