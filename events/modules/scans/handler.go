// Package scan handles Kafka event processing for scan submission events.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// ScanImporter defines the interface for running a scan reconciliation.
type ScanImporter interface {
	ImportScan(ctx context.Context, doc model.ScanDocument, actorID string) (*model.ScanImport, error)
}

// HandleScanSubmittedWithService processes scan submission events from Kafka.
func HandleScanSubmittedWithService(ctx context.Context, msg []byte, service ScanImporter) error {
	var event ScanSubmittedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ScanSubmittedEvent: %w", err)
	}

	if event.Scan.Source == "" || len(event.Scan.Hosts) == 0 {
		return fmt.Errorf("invalid event: missing required fields")
	}

	log.Printf("Processing %s scan submission [%s] with %d hosts",
		event.Scan.Source, event.Scan.ScanName, len(event.Scan.Hosts))

	run, err := service.ImportScan(ctx, event.Scan, event.ActorID)
	if err != nil {
		return fmt.Errorf("internal service error: %w", err)
	}

	log.Printf("Successfully processed scan submission %s: %d findings created, %d reopened, %d skipped",
		run.ImportID, run.Counts.FindingsCreated, run.Counts.FindingsReopened, run.Counts.ItemsSkipped)
	return nil
}
