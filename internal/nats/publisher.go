package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishAssistanceEvent publishes a task-assistance lifecycle event.
func (p *Publisher) PublishAssistanceEvent(ctx context.Context, event AssistanceEvent) error {
	return p.publish(ctx, SubjectAssistanceEvent, event)
}

// PublishPatientEvent publishes a patient chart event.
func (p *Publisher) PublishPatientEvent(ctx context.Context, event PatientEvent) error {
	return p.publish(ctx, SubjectPatientEvent, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
