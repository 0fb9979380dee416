package ports

import (
	"context"
	"time"

	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/contexts/deliberation/voting-engine/domain/entities"
)

type VoteRepository interface {
	// SaveVote upserts by vote id; the unique index on (phase_id, voter_id)
	// backstops concurrent first-time casts by the same voter.
	SaveVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, voteID string) (entities.Vote, error)
	GetVoteByIdentity(ctx context.Context, phaseID string, voterID string) (entities.Vote, bool, error)
	ListVotesByPhase(ctx context.Context, phaseID string) ([]entities.Vote, error)
}

// PhaseProjection is the slice of phase state the voting engine needs,
// owned by the phase service.
type PhaseProjection struct {
	PhaseID   string
	DossierID string
	Kind      string
	Ballot    string
	Active    bool
	EndedAt   *time.Time
}

type PhaseReader interface {
	GetPhase(ctx context.Context, phaseID string) (PhaseProjection, error)
	// LatestClosedVotePhase returns the most recently ended VOTE phase of a
	// dossier, used for decision derivation.
	LatestClosedVotePhase(ctx context.Context, dossierID string) (PhaseProjection, bool, error)
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
