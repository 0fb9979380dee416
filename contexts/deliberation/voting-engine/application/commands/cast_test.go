package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/deliberation/voting-engine/adapters/memory"
	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	"quorum/contexts/deliberation/voting-engine/ports"
)

func newVoteFixture(phase ports.PhaseProjection) (VoteUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	phases := memory.NewPhaseReaderStub([]ports.PhaseProjection{phase})
	return VoteUseCase{
		Votes:  store,
		Phases: phases,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}, store
}

func TestCastVoteThenResubmitUpdatesInPlace(t *testing.T) {
	useCase, store := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-1", DossierID: "dossier-1", Kind: "VOTE", Ballot: "AVIS", Active: true,
	})

	first, err := useCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID:  "phase-1",
		VoterID:  "member-a",
		Decision: entities.DecisionFavorable,
	})
	if err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	if first.WasUpdate {
		t.Fatalf("first cast must not be an update")
	}

	second, err := useCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID:  "phase-1",
		VoterID:  "member-a",
		Decision: entities.DecisionDefavorable,
		Comment:  "changement apres discussion",
	})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if !second.WasUpdate {
		t.Fatalf("resubmit must report an update")
	}
	if second.Vote.VoteID != first.Vote.VoteID {
		t.Fatalf("resubmit must keep the vote id, got %s vs %s", second.Vote.VoteID, first.Vote.VoteID)
	}
	if !second.Vote.CreatedAt.Equal(first.Vote.CreatedAt) {
		t.Fatalf("resubmit must keep created_at")
	}
	if second.Vote.Decision != entities.DecisionDefavorable {
		t.Fatalf("expected replaced decision, got %s", second.Vote.Decision)
	}

	votes, err := store.ListVotesByPhase(context.Background(), "phase-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected one stored vote after resubmit, got %d", len(votes))
	}
}

func TestCastVoteBallotMismatch(t *testing.T) {
	avisCase, _ := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-avis", DossierID: "dossier-1", Kind: "VOTE", Ballot: "AVIS", Active: true,
	})
	_, err := avisCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID: "phase-avis",
		VoterID: "member-a",
		Score:   15,
	})
	if !errors.Is(err, domainerrors.ErrBallotMismatch) {
		t.Fatalf("expected ErrBallotMismatch on AVIS phase without decision, got %v", err)
	}

	noteCase, _ := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-note", DossierID: "dossier-1", Kind: "VOTE", Ballot: "NOTE", Active: true,
	})
	_, err = noteCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID: "phase-note",
		VoterID: "member-a",
		Score:   21,
	})
	if !errors.Is(err, domainerrors.ErrBallotMismatch) {
		t.Fatalf("expected ErrBallotMismatch on out-of-range score, got %v", err)
	}
}

func TestCastVoteScoreZeroIsValid(t *testing.T) {
	useCase, _ := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-note", DossierID: "dossier-1", Kind: "VOTE", Ballot: "NOTE", Active: true,
	})
	result, err := useCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID: "phase-note",
		VoterID: "member-a",
		Score:   0,
	})
	if err != nil {
		t.Fatalf("zero score cast failed: %v", err)
	}
	if result.Vote.Score != 0 {
		t.Fatalf("expected stored score 0, got %d", result.Vote.Score)
	}
}

func TestCastVoteRejectsClosedOrDiscussionPhase(t *testing.T) {
	closedCase, _ := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-closed", DossierID: "dossier-1", Kind: "VOTE", Ballot: "AVIS", Active: false,
	})
	_, err := closedCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID:  "phase-closed",
		VoterID:  "member-a",
		Decision: entities.DecisionFavorable,
	})
	if !errors.Is(err, domainerrors.ErrPhaseNotVotable) {
		t.Fatalf("expected ErrPhaseNotVotable on closed phase, got %v", err)
	}

	discussionCase, _ := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-disc", DossierID: "dossier-1", Kind: "DISCUSSION", Active: true,
	})
	_, err = discussionCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID:  "phase-disc",
		VoterID:  "member-a",
		Decision: entities.DecisionFavorable,
	})
	if !errors.Is(err, domainerrors.ErrPhaseNotVotable) {
		t.Fatalf("expected ErrPhaseNotVotable on DISCUSSION phase, got %v", err)
	}
}

func TestCastVoteAppendsOutboxEnvelope(t *testing.T) {
	useCase, store := newVoteFixture(ports.PhaseProjection{
		PhaseID: "phase-1", DossierID: "dossier-1", Kind: "VOTE", Ballot: "AVIS", Active: true,
	})
	_, err := useCase.CastVote(context.Background(), CastVoteCommand{
		PhaseID:  "phase-1",
		VoterID:  "member-a",
		Decision: entities.DecisionFavorable,
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	envelopes := store.Envelopes()
	if len(envelopes) != 1 {
		t.Fatalf("expected one envelope, got %d", len(envelopes))
	}
	if envelopes[0].EventType != "vote.cast" {
		t.Fatalf("unexpected event type %s", envelopes[0].EventType)
	}
	if envelopes[0].PartitionKey != "phase-1" {
		t.Fatalf("expected partition by phase id, got %s", envelopes[0].PartitionKey)
	}
}
