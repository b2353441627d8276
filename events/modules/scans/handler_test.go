package scan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

type fakeImporter struct {
	doc     model.ScanDocument
	actorID string
	called  bool
	err     error
}

func (f *fakeImporter) ImportScan(ctx context.Context, doc model.ScanDocument, actorID string) (*model.ScanImport, error) {
	f.called = true
	f.doc = doc
	f.actorID = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &model.ScanImport{
		ImportID: "run-1",
		Source:   doc.Source,
		Status:   model.ScanImportCompleted,
		Counts:   model.ScanImportCounts{FindingsCreated: 2},
	}, nil
}

func validEvent() ScanSubmittedEvent {
	return ScanSubmittedEvent{
		EventType: "scan.submitted",
		ActorID:   "analyst-1",
		Scan: model.ScanDocument{
			Source:   "nessus",
			ScanName: "Weekly DMZ",
			Hosts: []model.ScanHost{
				{Hostname: "web01.example.com", IPAddress: "10.0.0.5"},
			},
		},
	}
}

func TestHandleScanSubmitted(t *testing.T) {
	importer := &fakeImporter{}
	msg, err := json.Marshal(validEvent())
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}

	if err := HandleScanSubmittedWithService(context.Background(), msg, importer); err != nil {
		t.Fatalf("HandleScanSubmittedWithService returned error: %v", err)
	}
	if !importer.called {
		t.Fatal("importer was not invoked")
	}
	if importer.doc.Source != "nessus" || len(importer.doc.Hosts) != 1 {
		t.Errorf("importer received wrong document: %+v", importer.doc)
	}
	if importer.actorID != "analyst-1" {
		t.Errorf("actorID = %q, want analyst-1", importer.actorID)
	}
}

func TestHandleScanSubmittedBadJSON(t *testing.T) {
	importer := &fakeImporter{}
	err := HandleScanSubmittedWithService(context.Background(), []byte("{not json"), importer)
	if err == nil {
		t.Fatal("malformed JSON should be rejected")
	}
	if importer.called {
		t.Error("importer must not run for malformed events")
	}
}

func TestHandleScanSubmittedMissingFields(t *testing.T) {
	noSource := validEvent()
	noSource.Scan.Source = ""
	noHosts := validEvent()
	noHosts.Scan.Hosts = nil

	for name, event := range map[string]ScanSubmittedEvent{"no source": noSource, "no hosts": noHosts} {
		importer := &fakeImporter{}
		msg, _ := json.Marshal(event)
		if err := HandleScanSubmittedWithService(context.Background(), msg, importer); err == nil {
			t.Errorf("%s: event should be rejected", name)
		}
		if importer.called {
			t.Errorf("%s: importer must not run for invalid events", name)
		}
	}
}

func TestHandleScanSubmittedServiceError(t *testing.T) {
	importer := &fakeImporter{err: errors.New("database unavailable")}
	msg, _ := json.Marshal(validEvent())

	err := HandleScanSubmittedWithService(context.Background(), msg, importer)
	if err == nil {
		t.Fatal("service failures should propagate")
	}
	if !errors.Is(err, importer.err) {
		t.Errorf("error should wrap the service error, got %v", err)
	}
}
