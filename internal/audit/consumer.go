package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/vitalpath/vitalpath/internal/nats"
)

// Consumer listens on the event subjects and persists entries to the database.
type Consumer struct {
	repo        *Repository
	consumerMgr *inats.ConsumerManager
}

// NewConsumer creates a new audit event Consumer.
func NewConsumer(repo *Repository, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{
		repo:        repo,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.StreamEvents, "audit-persister",
		inats.SubjectAssistanceEvent, inats.SubjectPatientEvent)
	if err != nil {
		return err
	}

	slog.Info("audit consumer started", "consumer", "audit-persister")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	var log *Log

	switch msg.Subject() {
	case inats.SubjectAssistanceEvent:
		var event inats.AssistanceEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			slog.Error("audit consumer: unmarshaling assistance event", "error", err)
			_ = msg.Nak()
			return
		}
		log = &Log{
			ID:        uuid.New(),
			EventType: event.EventType,
			TaskCode:  event.TaskCode,
			CreatedAt: event.Timestamp,
		}
		if event.PatientID != uuid.Nil {
			id := event.PatientID
			log.PatientID = &id
		}
		details := map[string]any{
			"role":          event.Role,
			"from_cache":    event.FromCache,
			"patient_index": event.PatientIndex,
		}
		if event.Detail != "" {
			details["detail"] = event.Detail
		}
		if data, err := json.Marshal(details); err == nil {
			log.Details = data
		}

	case inats.SubjectPatientEvent:
		var event inats.PatientEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			slog.Error("audit consumer: unmarshaling patient event", "error", err)
			_ = msg.Nak()
			return
		}
		log = &Log{
			ID:        uuid.New(),
			EventType: event.EventType,
			CreatedAt: event.Timestamp,
		}
		if event.PatientID != uuid.Nil {
			id := event.PatientID
			log.PatientID = &id
		}
		if data, err := json.Marshal(map[string]int{"patient_index": event.PatientIndex}); err == nil {
			log.Details = data
		}

	default:
		_ = msg.Ack()
		return
	}

	if err := c.repo.Insert(ctx, log); err != nil {
		slog.Error("audit consumer: persisting audit log", "error", err, "event_type", log.EventType)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	slog.Debug("audit consumer: persisted event", "event_type", log.EventType, "task_code", log.TaskCode)
}
