package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/instruction/phase-service/adapters/memory"
	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
)

func newPhaseFixture(dossierStatus string) (PhaseUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	return PhaseUseCase{
		Phases:   store,
		Dossiers: memory.StaticDossierStatus(dossierStatus),
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
	}, store
}

func TestOpenPhaseDefaultsVoteBallot(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	phase, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindVote,
	})
	if err != nil {
		t.Fatalf("open phase failed: %v", err)
	}
	if phase.Ballot != entities.BallotAvis {
		t.Fatalf("expected default AVIS ballot, got %s", phase.Ballot)
	}
	if !phase.Active() {
		t.Fatalf("freshly opened phase must be active")
	}
}

func TestOpenPhaseRejectsBallotOnDiscussion(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	_, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
		Ballot:    entities.BallotNote,
	})
	if !errors.Is(err, domainerrors.ErrInvalidPhaseInput) {
		t.Fatalf("expected ErrInvalidPhaseInput, got %v", err)
	}
}

func TestOpenPhaseRequiresDossierUnderReview(t *testing.T) {
	useCase, _ := newPhaseFixture("SOUMIS")

	_, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if !errors.Is(err, domainerrors.ErrDossierNotUnderReview) {
		t.Fatalf("expected ErrDossierNotUnderReview, got %v", err)
	}
}

func TestOpenSecondPhaseConflicts(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	_, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	_, err = useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindVote,
	})
	if !errors.Is(err, domainerrors.ErrActivePhaseExists) {
		t.Fatalf("expected ErrActivePhaseExists, got %v", err)
	}
}

func TestCloseThenReopenAllowsNextPhase(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	first, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := useCase.ClosePhase(context.Background(), ClosePhaseCommand{
		PhaseID: first.PhaseID,
		ActorID: "coordinator-1",
	}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindVote,
		Ballot:    entities.BallotNote,
	}); err != nil {
		t.Fatalf("open after close failed: %v", err)
	}
}

func TestClosePhaseTwice(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	phase, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := useCase.ClosePhase(context.Background(), ClosePhaseCommand{
		PhaseID: phase.PhaseID,
		ActorID: "coordinator-1",
	}); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	_, err = useCase.ClosePhase(context.Background(), ClosePhaseCommand{
		PhaseID: phase.PhaseID,
		ActorID: "coordinator-1",
	})
	if !errors.Is(err, domainerrors.ErrPhaseClosed) {
		t.Fatalf("expected ErrPhaseClosed on second close, got %v", err)
	}
}

func TestExtendPhaseMovesTargetCloseDate(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	phase, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	extended, err := useCase.ExtendPhase(context.Background(), ExtendPhaseCommand{
		PhaseID:        phase.PhaseID,
		ActorID:        "coordinator-1",
		AdditionalDays: 3,
	})
	if err != nil {
		t.Fatalf("extend failed: %v", err)
	}
	if extended.TargetCloseAt == nil {
		t.Fatalf("expected a target close date after extension")
	}
	firstTarget := *extended.TargetCloseAt

	again, err := useCase.ExtendPhase(context.Background(), ExtendPhaseCommand{
		PhaseID:        phase.PhaseID,
		ActorID:        "coordinator-1",
		AdditionalDays: 2,
	})
	if err != nil {
		t.Fatalf("second extend failed: %v", err)
	}
	want := firstTarget.AddDate(0, 0, 2)
	if again.TargetCloseAt == nil || !again.TargetCloseAt.Equal(want) {
		t.Fatalf("expected target %v, got %v", want, again.TargetCloseAt)
	}
}

func TestExtendPhaseValidation(t *testing.T) {
	useCase, _ := newPhaseFixture("EN_COURS")

	phase, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindDiscussion,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	_, err = useCase.ExtendPhase(context.Background(), ExtendPhaseCommand{
		PhaseID:        phase.PhaseID,
		ActorID:        "coordinator-1",
		AdditionalDays: 0,
	})
	if !errors.Is(err, domainerrors.ErrInvalidExtension) {
		t.Fatalf("expected ErrInvalidExtension, got %v", err)
	}

	if _, err := useCase.ClosePhase(context.Background(), ClosePhaseCommand{
		PhaseID: phase.PhaseID,
		ActorID: "coordinator-1",
	}); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_, err = useCase.ExtendPhase(context.Background(), ExtendPhaseCommand{
		PhaseID:        phase.PhaseID,
		ActorID:        "coordinator-1",
		AdditionalDays: 1,
	})
	if !errors.Is(err, domainerrors.ErrPhaseClosed) {
		t.Fatalf("expected ErrPhaseClosed on extending closed phase, got %v", err)
	}
}

func TestPhaseLifecycleEmitsEnvelopes(t *testing.T) {
	useCase, store := newPhaseFixture("EN_COURS")

	phase, err := useCase.OpenPhase(context.Background(), OpenPhaseCommand{
		DossierID: "dossier-1",
		ActorID:   "coordinator-1",
		Kind:      entities.KindVote,
		Ballot:    entities.BallotNote,
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := useCase.ExtendPhase(context.Background(), ExtendPhaseCommand{
		PhaseID:        phase.PhaseID,
		ActorID:        "coordinator-1",
		AdditionalDays: 5,
	}); err != nil {
		t.Fatalf("extend failed: %v", err)
	}
	if _, err := useCase.ClosePhase(context.Background(), ClosePhaseCommand{
		PhaseID: phase.PhaseID,
		ActorID: "coordinator-1",
	}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	envelopes := store.Envelopes()
	if len(envelopes) != 3 {
		t.Fatalf("expected three envelopes, got %d", len(envelopes))
	}
	types := []string{envelopes[0].EventType, envelopes[1].EventType, envelopes[2].EventType}
	want := []string{"phase.opened", "phase.extended", "phase.closed"}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected event order %v, got %v", want, types)
		}
	}
	for _, envelope := range envelopes {
		if envelope.PartitionKey != "dossier-1" {
			t.Fatalf("expected partition by dossier id, got %s", envelope.PartitionKey)
		}
	}
}
