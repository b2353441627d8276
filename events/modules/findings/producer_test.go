package finding

import (
	"context"
	"testing"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// Without InitProducer the package-level publisher must be a silent no-op so
// the REST API works with no broker configured.
func TestPublishWithoutProducerIsNoop(t *testing.T) {
	if defaultProducer != nil {
		t.Skip("package-level producer already configured")
	}
	err := PublishStatusChanged(context.Background(), model.Finding{Key: "f1"}, model.StatusChangeEvent{
		PreviousStatus: "OPEN",
		NewStatus:      "FIXED",
	})
	if err != nil {
		t.Errorf("PublishStatusChanged without a producer = %v, want nil", err)
	}
	if err := CloseProducer(); err != nil {
		t.Errorf("CloseProducer without a producer = %v, want nil", err)
	}
}
