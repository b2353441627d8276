// Package finding handles Kafka event production for finding status change events.
package finding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
	"github.com/segmentio/kafka-go"
)

// FindingProducer handles sending finding status change events to Kafka
type FindingProducer struct {
	Writer *kafka.Writer
}

// NewFindingProducer initializes a new Kafka writer for finding events
func NewFindingProducer(brokers []string, topic string) *FindingProducer {
	return &FindingProducer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishStatusChanged sends the event to the Kafka topic
func (p *FindingProducer) PublishStatusChanged(ctx context.Context, finding model.Finding, change model.StatusChangeEvent) error {
	event := FindingStatusChangedEvent{
		EventType:     "finding.status.changed",
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",

		FindingKey:       finding.Key,
		AssetKey:         finding.AssetKey,
		VulnerabilityKey: finding.VulnerabilityKey,
		Change:           change,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(finding.Key),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *FindingProducer) Close() error {
	return p.Writer.Close()
}

var defaultProducer *FindingProducer

// InitProducer wires the package-level producer used by the REST handlers.
// Until it is called, PublishStatusChanged is a no-op so the API works
// without a broker.
func InitProducer(brokers []string, topic string) {
	defaultProducer = NewFindingProducer(brokers, topic)
}

// PublishStatusChanged publishes through the package-level producer, if configured.
func PublishStatusChanged(ctx context.Context, finding model.Finding, change model.StatusChangeEvent) error {
	if defaultProducer == nil {
		return nil
	}
	return defaultProducer.PublishStatusChanged(ctx, finding, change)
}

// CloseProducer shuts down the package-level producer, if configured.
func CloseProducer() error {
	if defaultProducer == nil {
		return nil
	}
	return defaultProducer.Close()
}
