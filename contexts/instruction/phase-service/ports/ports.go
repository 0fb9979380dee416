package ports

import (
	"context"
	"time"

	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/contexts/instruction/phase-service/domain/entities"
)

type PhaseRepository interface {
	// CreatePhase inserts the phase and enforces the single-active-phase
	// invariant in the same atomic unit; a second active phase for the same
	// dossier yields ErrActivePhaseExists.
	CreatePhase(ctx context.Context, phase entities.Phase) error
	GetPhase(ctx context.Context, phaseID string) (entities.Phase, error)
	GetActivePhase(ctx context.Context, dossierID string) (entities.Phase, bool, error)
	ListPhases(ctx context.Context, dossierID string) ([]entities.Phase, error)
	// SetTargetClose updates the target close date of a still-active phase;
	// a closed phase yields ErrPhaseClosed.
	SetTargetClose(ctx context.Context, phaseID string, target time.Time, updatedAt time.Time) error
	// ClosePhase sets the end timestamp iff it is not already set, so two
	// concurrent closes yield exactly one success and one ErrPhaseClosed.
	ClosePhase(ctx context.Context, phaseID string, endedAt time.Time) (entities.Phase, error)
	// ListOverduePhases returns active phases whose target close date passed
	// and that have not been flagged yet.
	ListOverduePhases(ctx context.Context, asOf time.Time) ([]entities.Phase, error)
	MarkReminderSent(ctx context.Context, phaseID string, sentAt time.Time) error
}

// DossierState is the projection of the dossier status owned by the dossier
// service; phases may only open while the dossier is EN_COURS.
type DossierState interface {
	GetDossierStatus(ctx context.Context, dossierID string) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}
