package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "quorum/contexts/instruction/dossier-service/application"
	"quorum/contexts/instruction/dossier-service/ports"
)

// WorkflowOutboxRelay publishes persisted workflow outbox records to the
// event bus. All instruction/deliberation services append to the same outbox
// table, so one relay covers every WorkflowEvent kind.
type WorkflowOutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after bus publish succeeds. It stops on the first failure so
// the retry loop can reprocess remaining rows safely.
func (r WorkflowOutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("workflow outbox list failed",
			"event", "workflow_outbox_list_failed",
			"module", "instruction/dossier-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}
	topic := r.Topic
	if topic == "" {
		topic = "workflow.events"
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("workflow outbox payload decode failed",
				"event", "workflow_outbox_decode_failed",
				"module", "instruction/dossier-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("workflow outbox publish failed",
				"event", "workflow_outbox_publish_failed",
				"module", "instruction/dossier-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_type", message.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			logger.Error("workflow outbox ack failed",
				"event", "workflow_outbox_ack_failed",
				"module", "instruction/dossier-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("workflow outbox relay cycle completed",
		"event", "workflow_outbox_relay_completed",
		"module", "instruction/dossier-service",
		"layer", "worker",
		"published", len(pending),
	)
	return nil
}
