package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "quorum/contexts/instruction/phase-service/application"
	"quorum/contexts/instruction/phase-service/ports"
)

// PhaseReminder flags active phases whose target close date has passed by
// emitting phase.reminder_due envelopes. It never closes phases; termination
// stays an explicit coordinator action.
type PhaseReminder struct {
	Phases ports.PhaseRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// RunOnce emits one reminder per overdue phase. Each phase is marked so a
// later cycle does not emit again.
func (w PhaseReminder) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}

	overdue, err := w.Phases.ListOverduePhases(ctx, now)
	if err != nil {
		logger.Error("phase reminder scan failed",
			"event", "phase_reminder_scan_failed",
			"module", "instruction/phase-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, phase := range overdue {
		eventID, err := w.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(map[string]any{
			"phase_id":        phase.PhaseID,
			"dossier_id":      phase.DossierID,
			"kind":            string(phase.Kind),
			"target_close_at": phase.TargetCloseAt.UTC().Format(time.RFC3339),
			"occurred_at":     now.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if err := w.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
			EventID:          eventID,
			EventType:        "phase.reminder_due",
			OccurredAt:       now,
			SourceService:    "phase-service",
			TraceID:          eventID,
			SchemaVersion:    1,
			PartitionKeyPath: "dossier_id",
			PartitionKey:     phase.DossierID,
			Data:             payload,
		}); err != nil {
			return err
		}
		if err := w.Phases.MarkReminderSent(ctx, phase.PhaseID, now); err != nil {
			return err
		}
		logger.Info("phase reminder emitted",
			"event", "phase_reminder_emitted",
			"module", "instruction/phase-service",
			"layer", "worker",
			"phase_id", phase.PhaseID,
			"dossier_id", phase.DossierID,
		)
	}
	return nil
}
