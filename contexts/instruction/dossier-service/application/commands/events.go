package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"quorum/contexts/instruction/dossier-service/domain/entities"
	"quorum/contexts/instruction/dossier-service/ports"
)

// appendStatusEvent writes the dossier.status_changed envelope to the
// workflow outbox. Outbox is optional for pure read/test wiring, so nil is
// treated as no-op.
func (uc DossierUseCase) appendStatusEvent(
	ctx context.Context,
	dossier entities.Dossier,
	from entities.Status,
	to entities.Status,
	actorID string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"dossier_id":  dossier.DossierID,
		"reference":   dossier.Reference,
		"from_status": string(from),
		"to_status":   string(to),
		"actor_id":    strings.TrimSpace(actorID),
		"occurred_at": occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	// Status events are partitioned by dossier for stable ordering on
	// dossier-scoped consumers.
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "dossier.status_changed",
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "dossier-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "dossier_id",
		PartitionKey:     dossier.DossierID,
		Data:             payload,
	})
}
