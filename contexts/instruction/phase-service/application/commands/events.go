package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"quorum/contexts/instruction/phase-service/domain/entities"
	"quorum/contexts/instruction/phase-service/ports"
)

// appendPhaseEvent writes a phase lifecycle envelope to the workflow outbox.
// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
func (uc PhaseUseCase) appendPhaseEvent(
	ctx context.Context,
	eventType string,
	phase entities.Phase,
	actorID string,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"phase_id":    phase.PhaseID,
		"dossier_id":  phase.DossierID,
		"kind":        string(phase.Kind),
		"ballot":      string(phase.Ballot),
		"actor_id":    strings.TrimSpace(actorID),
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	// Phase events are partitioned by dossier for stable ordering on
	// dossier-scoped consumers.
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "phase-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "dossier_id",
		PartitionKey:     phase.DossierID,
		Data:             payload,
	})
}
