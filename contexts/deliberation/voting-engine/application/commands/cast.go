package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/deliberation/voting-engine/application"
	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	"quorum/contexts/deliberation/voting-engine/ports"
)

// CastVoteCommand records or replaces a committee member's vote. Decision is
// read for AVIS phases, Score for NOTE phases.
type CastVoteCommand struct {
	PhaseID  string
	VoterID  string
	Decision entities.Decision
	Score    int
	Comment  string
}

// CastVoteResult returns the final vote state and whether an earlier vote by
// the same voter was replaced.
type CastVoteResult struct {
	Vote      entities.Vote
	WasUpdate bool
}

// VoteUseCase enforces the one-vote-per-(phase, voter) invariant with upsert
// semantics and emits vote.cast envelopes.
type VoteUseCase struct {
	Votes  ports.VoteRepository
	Phases ports.PhaseReader
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	phaseID := strings.TrimSpace(cmd.PhaseID)
	voterID := strings.TrimSpace(cmd.VoterID)
	if phaseID == "" || voterID == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	phase, err := uc.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if phase.Kind != "VOTE" || !phase.Active {
		logger.Warn("vote cast rejected, phase not votable",
			"event", "vote_cast_rejected",
			"module", "deliberation/voting-engine",
			"layer", "application",
			"phase_id", phaseID,
			"voter_id", voterID,
			"phase_kind", phase.Kind,
			"phase_active", phase.Active,
		)
		return CastVoteResult{}, domainerrors.ErrPhaseNotVotable
	}

	ballot := entities.Ballot(phase.Ballot)
	switch ballot {
	case entities.BallotAvis:
		if _, ok := entities.ParseDecision(string(cmd.Decision)); !ok {
			return CastVoteResult{}, domainerrors.ErrBallotMismatch
		}
	case entities.BallotNote:
		if cmd.Score < entities.ScoreMin || cmd.Score > entities.ScoreMax {
			return CastVoteResult{}, domainerrors.ErrBallotMismatch
		}
	default:
		return CastVoteResult{}, domainerrors.ErrPhaseNotVotable
	}

	now := uc.now()
	existing, found, err := uc.Votes.GetVoteByIdentity(ctx, phaseID, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}

	vote := existing
	if !found {
		voteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return CastVoteResult{}, err
		}
		vote = entities.Vote{
			VoteID:    voteID,
			PhaseID:   phaseID,
			VoterID:   voterID,
			CreatedAt: now,
		}
	}
	vote.Ballot = ballot
	vote.Decision = ""
	vote.Score = 0
	if ballot == entities.BallotAvis {
		vote.Decision = cmd.Decision
	} else {
		vote.Score = cmd.Score
	}
	vote.Comment = strings.TrimSpace(cmd.Comment)
	vote.UpdatedAt = now

	if err := uc.Votes.SaveVote(ctx, vote); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.appendVoteEvent(ctx, vote, phase.DossierID, found, now); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "vote_cast",
		"module", "deliberation/voting-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"phase_id", vote.PhaseID,
		"voter_id", vote.VoterID,
		"ballot", string(vote.Ballot),
		"was_update", found,
	)
	return CastVoteResult{Vote: vote, WasUpdate: found}, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// appendVoteEvent writes the vote.cast envelope. Outbox is optional for pure
// read/test wiring, so nil is treated as no-op.
func (uc VoteUseCase) appendVoteEvent(
	ctx context.Context,
	vote entities.Vote,
	dossierID string,
	wasUpdate bool,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"vote_id":     vote.VoteID,
		"phase_id":    vote.PhaseID,
		"dossier_id":  dossierID,
		"voter_id":    vote.VoterID,
		"ballot":      string(vote.Ballot),
		"was_update":  wasUpdate,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	if vote.Ballot == entities.BallotAvis {
		data["decision"] = string(vote.Decision)
	} else {
		data["score"] = vote.Score
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	// Vote events are partitioned by phase so per-phase consumers see casts
	// in order.
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "vote.cast",
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "phase_id",
		PartitionKey:     vote.PhaseID,
		Data:             payload,
	})
}
