package ports

import (
	"context"
	"time"

	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/contexts/instruction/dossier-service/domain/entities"
)

type DossierRepository interface {
	SaveDossier(ctx context.Context, dossier entities.Dossier) error
	// TransitionStatus moves the dossier from one status to another in a
	// single compare-and-set write. A dossier no longer in the from status
	// yields ErrInvalidTransition.
	TransitionStatus(ctx context.Context, dossierID string, from, to entities.Status, updatedAt time.Time) error
	GetDossier(ctx context.Context, dossierID string) (entities.Dossier, error)
	ListDossiers(ctx context.Context, status entities.Status) ([]entities.Dossier, error)
	AppendTransition(ctx context.Context, transition entities.StatusTransition) error
	ListTransitions(ctx context.Context, dossierID string) ([]entities.StatusTransition, error)
}

// PhaseState exposes the single fact the state machine needs from the phase
// manager: whether finalization is blocked by an open phase.
type PhaseState interface {
	HasActivePhase(ctx context.Context, dossierID string) (bool, error)
}

// CommentAppender lets the completeness review attach its optional comment to
// the dossier discussion thread.
type CommentAppender interface {
	AppendDossierComment(ctx context.Context, dossierID string, authorID string, body string) error
}

// DecisionSource derives APPROUVE/REJETE from the most recent closed VOTE
// phase of a dossier, applying the named decision policy for its ballot.
type DecisionSource interface {
	DeriveDecision(ctx context.Context, dossierID string) (entities.Status, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter appends envelopes to the shared workflow outbox in the same
// unit of work as the state change.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the workflow outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
