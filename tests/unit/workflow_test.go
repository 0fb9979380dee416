package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	commentmemory "quorum/contexts/deliberation/comment-service/adapters/memory"
	commentcommands "quorum/contexts/deliberation/comment-service/application/commands"
	commentqueries "quorum/contexts/deliberation/comment-service/application/queries"
	votememory "quorum/contexts/deliberation/voting-engine/adapters/memory"
	votecommands "quorum/contexts/deliberation/voting-engine/application/commands"
	votequeries "quorum/contexts/deliberation/voting-engine/application/queries"
	voteerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	votingservices "quorum/contexts/deliberation/voting-engine/domain/services"
	voteports "quorum/contexts/deliberation/voting-engine/ports"
	dossiermemory "quorum/contexts/instruction/dossier-service/adapters/memory"
	dossiercommands "quorum/contexts/instruction/dossier-service/application/commands"
	dossierworkers "quorum/contexts/instruction/dossier-service/application/workers"
	dossierentities "quorum/contexts/instruction/dossier-service/domain/entities"
	dossiererrors "quorum/contexts/instruction/dossier-service/domain/errors"
	phasememory "quorum/contexts/instruction/phase-service/adapters/memory"
	phasecommands "quorum/contexts/instruction/phase-service/application/commands"
	phaseentities "quorum/contexts/instruction/phase-service/domain/entities"
	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/internal/platform/messaging"
)

// workflowFixture wires the in-memory stores of all services the way the
// runtime composition root does, with cross-service reads adapted between
// module ports.
type workflowFixture struct {
	dossierStore *dossiermemory.Store
	phaseStore   *phasememory.Store
	voteStore    *votememory.Store
	commentStore *commentmemory.Store

	dossiers dossiercommands.DossierUseCase
	phases   phasecommands.PhaseUseCase
	votes    votecommands.VoteUseCase
	results  votequeries.ResultsUseCase
	comments commentcommands.CommentUseCase
	reads    commentqueries.CommentUseCase
}

type phaseGate struct {
	store *phasememory.Store
}

func (g phaseGate) HasActivePhase(ctx context.Context, dossierID string) (bool, error) {
	_, found, err := g.store.GetActivePhase(ctx, dossierID)
	return found, err
}

type dossierStatusReader struct {
	store *dossiermemory.Store
}

func (r dossierStatusReader) GetDossierStatus(ctx context.Context, dossierID string) (string, error) {
	dossier, err := r.store.GetDossier(ctx, dossierID)
	if err != nil {
		return "", err
	}
	return string(dossier.Status), nil
}

type phaseProjectionReader struct {
	store *phasememory.Store
}

func (r phaseProjectionReader) GetPhase(ctx context.Context, phaseID string) (voteports.PhaseProjection, error) {
	phase, err := r.store.GetPhase(ctx, phaseID)
	if err != nil {
		return voteports.PhaseProjection{}, voteerrors.ErrPhaseNotFound
	}
	return projectPhase(phase), nil
}

func (r phaseProjectionReader) LatestClosedVotePhase(ctx context.Context, dossierID string) (voteports.PhaseProjection, bool, error) {
	phases, err := r.store.ListPhases(ctx, dossierID)
	if err != nil {
		return voteports.PhaseProjection{}, false, err
	}
	var latest phaseentities.Phase
	found := false
	for _, phase := range phases {
		if phase.Kind != phaseentities.KindVote || phase.EndedAt == nil {
			continue
		}
		if !found || phase.EndedAt.After(*latest.EndedAt) {
			latest = phase
			found = true
		}
	}
	if !found {
		return voteports.PhaseProjection{}, false, nil
	}
	return projectPhase(latest), true, nil
}

func projectPhase(phase phaseentities.Phase) voteports.PhaseProjection {
	return voteports.PhaseProjection{
		PhaseID:   phase.PhaseID,
		DossierID: phase.DossierID,
		Kind:      string(phase.Kind),
		Ballot:    string(phase.Ballot),
		Active:    phase.Active(),
		EndedAt:   phase.EndedAt,
	}
}

type dossierExistence struct {
	store *dossiermemory.Store
}

func (e dossierExistence) DossierExists(ctx context.Context, dossierID string) (bool, error) {
	if _, err := e.store.GetDossier(ctx, dossierID); err != nil {
		return false, nil
	}
	return true, nil
}

type phaseDossierResolver struct {
	store *phasememory.Store
}

func (r phaseDossierResolver) GetPhaseDossier(ctx context.Context, phaseID string) (string, error) {
	phase, err := r.store.GetPhase(ctx, phaseID)
	if err != nil {
		return "", err
	}
	return phase.DossierID, nil
}

type voteDecisionSource struct {
	results votequeries.ResultsUseCase
}

func (d voteDecisionSource) DeriveDecision(ctx context.Context, dossierID string) (dossierentities.Status, error) {
	outcome, err := d.results.DeriveDossierOutcome(ctx, dossierID)
	if err != nil {
		if errors.Is(err, voteerrors.ErrNoVotes) || errors.Is(err, voteerrors.ErrPhaseNotFound) {
			return "", dossiererrors.ErrDecisionNotDerivable
		}
		return "", err
	}
	if outcome == votingservices.OutcomeApprouve {
		return dossierentities.StatusApprouve, nil
	}
	return dossierentities.StatusRejete, nil
}

type commentThreadAppender struct {
	comments commentcommands.CommentUseCase
}

func (a commentThreadAppender) AppendDossierComment(ctx context.Context, dossierID string, authorID string, body string) error {
	_, err := a.comments.AddComment(ctx, commentcommands.AddCommentCommand{
		DossierID: dossierID,
		AuthorID:  authorID,
		Body:      body,
	})
	return err
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		dossierStore: dossiermemory.NewStore(nil),
		phaseStore:   phasememory.NewStore(nil),
		voteStore:    votememory.NewStore(nil),
		commentStore: commentmemory.NewStore(nil),
	}

	f.results = votequeries.ResultsUseCase{
		Votes:  f.voteStore,
		Phases: phaseProjectionReader{store: f.phaseStore},
	}
	f.comments = commentcommands.CommentUseCase{
		Comments: f.commentStore,
		Dossiers: dossierExistence{store: f.dossierStore},
		Phases:   phaseDossierResolver{store: f.phaseStore},
		Outbox:   f.dossierStore,
		Clock:    f.commentStore,
		IDGen:    f.commentStore,
	}
	f.reads = commentqueries.CommentUseCase{Comments: f.commentStore}
	f.dossiers = dossiercommands.DossierUseCase{
		Dossiers:  f.dossierStore,
		Phases:    phaseGate{store: f.phaseStore},
		Comments:  commentThreadAppender{comments: f.comments},
		Decisions: voteDecisionSource{results: f.results},
		Outbox:    f.dossierStore,
		Clock:     f.dossierStore,
		IDGen:     f.dossierStore,
	}
	f.phases = phasecommands.PhaseUseCase{
		Phases:   f.phaseStore,
		Dossiers: dossierStatusReader{store: f.dossierStore},
		Outbox:   f.dossierStore,
		Clock:    f.phaseStore,
		IDGen:    f.phaseStore,
	}
	f.votes = votecommands.VoteUseCase{
		Votes:  f.voteStore,
		Phases: phaseProjectionReader{store: f.phaseStore},
		Outbox: f.dossierStore,
		Clock:  f.voteStore,
		IDGen:  f.voteStore,
	}
	return f
}

func TestDossierWorkflowEndToEnd(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()

	dossier, err := f.dossiers.SubmitDossier(ctx, dossiercommands.SubmitDossierCommand{
		ActorID:       "agent-1",
		RequestTypeID: "subvention",
		SubmitterName: "Jean Dupont",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := f.dossiers.ReviewCompleteness(ctx, dossiercommands.ReviewCompletenessCommand{
		DossierID: dossier.DossierID,
		ActorID:   "agent-1",
		Complete:  true,
		Comment:   "dossier complet, instruction possible",
	}); err != nil {
		t.Fatalf("completeness review failed: %v", err)
	}
	if _, err := f.dossiers.StartReview(ctx, dossiercommands.StartReviewCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coord-1",
	}); err != nil {
		t.Fatalf("start review failed: %v", err)
	}

	phase, err := f.phases.OpenPhase(ctx, phasecommands.OpenPhaseCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coord-1",
		Kind:      phaseentities.KindVote,
		Ballot:    phaseentities.BallotNote,
	})
	if err != nil {
		t.Fatalf("open vote phase failed: %v", err)
	}

	for voter, score := range map[string]int{"member-a": 12, "member-b": 15, "member-c": 18} {
		if _, err := f.votes.CastVote(ctx, votecommands.CastVoteCommand{
			PhaseID: phase.PhaseID,
			VoterID: voter,
			Score:   score,
		}); err != nil {
			t.Fatalf("cast by %s failed: %v", voter, err)
		}
	}

	// Finalization is blocked while the vote phase stays open.
	_, err = f.dossiers.FinalizeDossier(ctx, dossiercommands.FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coord-1",
		Auto:      true,
	})
	if !errors.Is(err, dossiererrors.ErrActivePhaseOpen) {
		t.Fatalf("expected ErrActivePhaseOpen, got %v", err)
	}

	if _, err := f.phases.ClosePhase(ctx, phasecommands.ClosePhaseCommand{
		PhaseID: phase.PhaseID,
		ActorID: "coord-1",
	}); err != nil {
		t.Fatalf("close phase failed: %v", err)
	}

	final, err := f.dossiers.FinalizeDossier(ctx, dossiercommands.FinalizeDossierCommand{
		DossierID: dossier.DossierID,
		ActorID:   "coord-1",
		Auto:      true,
	})
	if err != nil {
		t.Fatalf("auto finalize failed: %v", err)
	}
	if final.Status != dossierentities.StatusApprouve {
		t.Fatalf("mean 15 must approve, got %s", final.Status)
	}

	results, err := f.results.PhaseResults(ctx, phase.PhaseID)
	if err != nil {
		t.Fatalf("results after close failed: %v", err)
	}
	if results.TotalVotes != 3 || results.Score == nil || results.Score.Mean != 15 {
		t.Fatalf("unexpected results %+v", results)
	}

	// The completeness comment landed on the dossier thread; phase comments
	// stay readable after close.
	if _, err := f.comments.AddComment(ctx, commentcommands.AddCommentCommand{
		PhaseID:  phase.PhaseID,
		AuthorID: "member-a",
		Body:     "motivation du vote",
	}); err != nil {
		t.Fatalf("phase comment after close failed: %v", err)
	}
	count, err := f.reads.CountComments(ctx, dossier.DossierID)
	if err != nil {
		t.Fatalf("count comments failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two comments across threads, got %d", count)
	}

	history, err := f.dossierStore.ListTransitions(ctx, dossier.DossierID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	statuses := make([]dossierentities.Status, 0, len(history))
	for _, transition := range history {
		statuses = append(statuses, transition.ToStatus)
	}
	want := []dossierentities.Status{
		dossierentities.StatusSoumis,
		dossierentities.StatusComplet,
		dossierentities.StatusEnCours,
		dossierentities.StatusApprouve,
	}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(statuses))
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("expected history %v, got %v", want, statuses)
		}
	}
}

func TestWorkflowEventsReachTheBus(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()

	dossier, err := f.dossiers.SubmitDossier(ctx, dossiercommands.SubmitDossierCommand{
		ActorID:       "agent-1",
		RequestTypeID: "subvention",
		SubmitterName: "Jean Dupont",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.comments.AddComment(ctx, commentcommands.AddCommentCommand{
		DossierID: dossier.DossierID,
		AuthorID:  "agent-1",
		Body:      "note initiale",
	}); err != nil {
		t.Fatalf("comment failed: %v", err)
	}

	bus, err := messaging.NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("bus init failed: %v", err)
	}
	received := make(chan contractsv1.Envelope, 16)
	if err := bus.Subscribe(ctx, "workflow.events", "workflow-test", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	relay := dossierworkers.WorkflowOutboxRelay{
		Outbox:    f.dossierStore,
		Publisher: bus,
		Clock:     f.dossierStore,
		Topic:     "workflow.events",
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	types := make(map[string]int)
	for i := 0; i < 2; i++ {
		select {
		case event := <-received:
			types[event.EventType]++
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", types)
		}
	}
	if types["dossier.status_changed"] != 1 || types["comment.added"] != 1 {
		t.Fatalf("unexpected event mix %v", types)
	}
	if f.dossierStore.PendingOutboxCount() != 0 {
		t.Fatalf("expected drained outbox, got %d pending", f.dossierStore.PendingOutboxCount())
	}
}
