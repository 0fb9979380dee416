package ports

import (
	"context"
	"time"

	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/contexts/deliberation/comment-service/domain/entities"
)

type CommentRepository interface {
	// AppendComment assigns the next monotonic position and persists the
	// comment.
	AppendComment(ctx context.Context, comment entities.Comment) (entities.Comment, error)
	ListDossierComments(ctx context.Context, dossierID string) ([]entities.Comment, error)
	ListPhaseComments(ctx context.Context, phaseID string) ([]entities.Comment, error)
	// CountComments spans the dossier thread and every phase thread of the
	// dossier.
	CountComments(ctx context.Context, dossierID string) (int64, error)
}

// DossierState is the slice of dossier state comments need, owned by the
// dossier service.
type DossierState interface {
	DossierExists(ctx context.Context, dossierID string) (bool, error)
}

// PhaseState resolves a phase to its dossier. Closed phases resolve too;
// comment history outlives the deliberation window.
type PhaseState interface {
	GetPhaseDossier(ctx context.Context, phaseID string) (string, error)
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
