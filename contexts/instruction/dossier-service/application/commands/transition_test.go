package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/instruction/dossier-service/adapters/memory"
	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
)

type staticDecision struct {
	status entities.Status
	err    error
}

func (d staticDecision) DeriveDecision(context.Context, string) (entities.Status, error) {
	return d.status, d.err
}

type commentRecorder struct {
	bodies []string
}

func (r *commentRecorder) AppendDossierComment(_ context.Context, _ string, _ string, body string) error {
	r.bodies = append(r.bodies, body)
	return nil
}

func newDossierFixture() (DossierUseCase, *memory.Store) {
	store := memory.NewStore(nil)
	return DossierUseCase{
		Dossiers: store,
		Phases:   memory.NoActivePhases,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
	}, store
}

func submitFixture(t *testing.T, useCase DossierUseCase) entities.Dossier {
	t.Helper()
	dossier, err := useCase.SubmitDossier(context.Background(), SubmitDossierCommand{
		ActorID:       "agent-1",
		RequestTypeID: "subvention",
		SubmitterName: "Jean Dupont",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return dossier
}

func TestSubmitDossierStartsInSoumis(t *testing.T) {
	useCase, store := newDossierFixture()
	dossier := submitFixture(t, useCase)

	if dossier.Status != entities.StatusSoumis {
		t.Fatalf("expected SOUMIS, got %s", dossier.Status)
	}
	if dossier.Reference == "" {
		t.Fatalf("expected a generated reference")
	}
	transitions, err := store.ListTransitions(context.Background(), dossier.DossierID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	if len(transitions) != 1 || transitions[0].ToStatus != entities.StatusSoumis {
		t.Fatalf("expected one initial transition, got %v", transitions)
	}
}

func TestSubmitDossierValidation(t *testing.T) {
	useCase, _ := newDossierFixture()
	_, err := useCase.SubmitDossier(context.Background(), SubmitDossierCommand{
		ActorID:       "agent-1",
		SubmitterName: "Jean Dupont",
	})
	if !errors.Is(err, domainerrors.ErrInvalidDossierInput) {
		t.Fatalf("expected ErrInvalidDossierInput, got %v", err)
	}
}

func TestCompletenessReviewBranches(t *testing.T) {
	useCase, _ := newDossierFixture()
	comments := &commentRecorder{}
	useCase.Comments = comments

	complete := submitFixture(t, useCase)
	reviewed, err := useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: complete.DossierID,
		ActorID:   "agent-2",
		Complete:  true,
		Comment:   "pieces au complet",
	})
	if err != nil {
		t.Fatalf("completeness review failed: %v", err)
	}
	if reviewed.Status != entities.StatusComplet {
		t.Fatalf("expected COMPLET, got %s", reviewed.Status)
	}
	if len(comments.bodies) != 1 || comments.bodies[0] != "pieces au complet" {
		t.Fatalf("expected review comment on the thread, got %v", comments.bodies)
	}

	incomplete := submitFixture(t, useCase)
	reviewed, err = useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: incomplete.DossierID,
		ActorID:   "agent-2",
		Complete:  false,
	})
	if err != nil {
		t.Fatalf("completeness review failed: %v", err)
	}
	if reviewed.Status != entities.StatusIncomplet {
		t.Fatalf("expected INCOMPLET, got %s", reviewed.Status)
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	useCase, _ := newDossierFixture()
	dossier := submitFixture(t, useCase)

	// SOUMIS cannot go straight to EN_COURS.
	_, err := useCase.StartReview(context.Background(), StartReviewCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// SOUMIS cannot be finalized.
	_, err = useCase.FinalizeDossier(context.Background(), FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
		Decision:  entities.StatusApprouve,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIncompletIsTerminal(t *testing.T) {
	useCase, _ := newDossierFixture()
	dossier := submitFixture(t, useCase)

	if _, err := useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: dossier.DossierID,
		ActorID:   "agent-2",
		Complete:  false,
	}); err != nil {
		t.Fatalf("completeness review failed: %v", err)
	}
	_, err := useCase.StartReview(context.Background(), StartReviewCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from INCOMPLET, got %v", err)
	}
}

func bringUnderReview(t *testing.T, useCase DossierUseCase) entities.Dossier {
	t.Helper()
	dossier := submitFixture(t, useCase)
	if _, err := useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: dossier.DossierID,
		ActorID:   "agent-2",
		Complete:  true,
	}); err != nil {
		t.Fatalf("completeness review failed: %v", err)
	}
	reviewed, err := useCase.StartReview(context.Background(), StartReviewCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
	})
	if err != nil {
		t.Fatalf("start review failed: %v", err)
	}
	return reviewed
}

func TestFinalizeDossierExplicitDecision(t *testing.T) {
	useCase, store := newDossierFixture()
	dossier := bringUnderReview(t, useCase)

	final, err := useCase.FinalizeDossier(context.Background(), FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
		Decision:  entities.StatusRejete,
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if final.Status != entities.StatusRejete {
		t.Fatalf("expected REJETE, got %s", final.Status)
	}

	transitions, err := store.ListTransitions(context.Background(), dossier.DossierID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	if len(transitions) != 4 {
		t.Fatalf("expected four audit rows, got %d", len(transitions))
	}
}

func TestFinalizeDossierBlockedByActivePhase(t *testing.T) {
	useCase, _ := newDossierFixture()
	dossier := bringUnderReview(t, useCase)
	useCase.Phases = memory.PhaseStateFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})

	_, err := useCase.FinalizeDossier(context.Background(), FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
		Decision:  entities.StatusApprouve,
	})
	if !errors.Is(err, domainerrors.ErrActivePhaseOpen) {
		t.Fatalf("expected ErrActivePhaseOpen, got %v", err)
	}
}

func TestFinalizeDossierAutoDecision(t *testing.T) {
	useCase, _ := newDossierFixture()
	dossier := bringUnderReview(t, useCase)
	useCase.Decisions = staticDecision{status: entities.StatusApprouve}

	final, err := useCase.FinalizeDossier(context.Background(), FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
		Auto:      true,
	})
	if err != nil {
		t.Fatalf("auto finalize failed: %v", err)
	}
	if final.Status != entities.StatusApprouve {
		t.Fatalf("expected APPROUVE, got %s", final.Status)
	}
}

func TestFinalizeDossierAutoWithoutDerivableDecision(t *testing.T) {
	useCase, _ := newDossierFixture()
	dossier := bringUnderReview(t, useCase)
	useCase.Decisions = staticDecision{err: domainerrors.ErrDecisionNotDerivable}

	_, err := useCase.FinalizeDossier(context.Background(), FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coordinator-1",
		Auto:      true,
	})
	if !errors.Is(err, domainerrors.ErrDecisionNotDerivable) {
		t.Fatalf("expected ErrDecisionNotDerivable, got %v", err)
	}
}

// staleStatusStore replays a fixed read snapshot so a second writer acts on a
// status another writer already moved past.
type staleStatusStore struct {
	*memory.Store
	snapshot entities.Dossier
}

func (s *staleStatusStore) GetDossier(context.Context, string) (entities.Dossier, error) {
	return s.snapshot, nil
}

func TestRacingCompletenessReviewsCommitOneEdge(t *testing.T) {
	useCase, store := newDossierFixture()
	dossier := submitFixture(t, useCase)

	// Both reviews observe the SOUMIS snapshot before either writes.
	useCase.Dossiers = &staleStatusStore{Store: store, snapshot: dossier}

	if _, err := useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: dossier.DossierID,
		ActorID:   "agent-2",
		Complete:  true,
	}); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	_, err := useCase.ReviewCompleteness(context.Background(), ReviewCompletenessCommand{
		DossierID: dossier.DossierID,
		ActorID:   "agent-3",
		Complete:  false,
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for the losing review, got %v", err)
	}

	current, err := store.GetDossier(context.Background(), dossier.DossierID)
	if err != nil {
		t.Fatalf("get dossier failed: %v", err)
	}
	if current.Status != entities.StatusComplet {
		t.Fatalf("expected the first review to win with COMPLET, got %s", current.Status)
	}
	transitions, err := store.ListTransitions(context.Background(), dossier.DossierID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	edgesOut := 0
	for _, row := range transitions {
		if row.FromStatus == entities.StatusSoumis {
			edgesOut++
		}
	}
	if edgesOut != 1 {
		t.Fatalf("expected one audit row out of SOUMIS, got %d", edgesOut)
	}
	if got := store.PendingOutboxCount(); got != 2 {
		t.Fatalf("expected submit plus one review envelope, got %d", got)
	}
}

func TestTransitionsEmitStatusChangedEnvelopes(t *testing.T) {
	useCase, store := newDossierFixture()
	dossier := bringUnderReview(t, useCase)

	messages, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected three pending envelopes, got %d", len(messages))
	}
	for _, message := range messages {
		if message.EventType != "dossier.status_changed" {
			t.Fatalf("unexpected event type %s", message.EventType)
		}
		if message.PartitionKey != dossier.DossierID {
			t.Fatalf("expected partition by dossier id, got %s", message.PartitionKey)
		}
	}
}
