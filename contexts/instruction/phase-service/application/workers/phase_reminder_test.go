package workers

import (
	"context"
	"testing"
	"time"

	"quorum/contexts/instruction/phase-service/adapters/memory"
	"quorum/contexts/instruction/phase-service/domain/entities"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestPhaseReminderEmitsOncePerOverduePhase(t *testing.T) {
	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	overdueTarget := now.Add(-24 * time.Hour)
	futureTarget := now.Add(72 * time.Hour)
	store := memory.NewStore([]entities.Phase{
		{
			PhaseID:       "phase-overdue",
			DossierID:     "dossier-1",
			Kind:          entities.KindDiscussion,
			StartedAt:     now.Add(-96 * time.Hour),
			TargetCloseAt: &overdueTarget,
		},
		{
			PhaseID:       "phase-on-track",
			DossierID:     "dossier-2",
			Kind:          entities.KindVote,
			Ballot:        entities.BallotAvis,
			StartedAt:     now.Add(-24 * time.Hour),
			TargetCloseAt: &futureTarget,
		},
	})
	worker := PhaseReminder{
		Phases: store,
		Outbox: store,
		Clock:  fixedClock{now: now},
		IDGen:  store,
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("reminder run failed: %v", err)
	}
	envelopes := store.Envelopes()
	if len(envelopes) != 1 {
		t.Fatalf("expected one reminder, got %d", len(envelopes))
	}
	if envelopes[0].EventType != "phase.reminder_due" {
		t.Fatalf("unexpected event type %s", envelopes[0].EventType)
	}
	if envelopes[0].PartitionKey != "dossier-1" {
		t.Fatalf("expected reminder for dossier-1, got %s", envelopes[0].PartitionKey)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("second reminder run failed: %v", err)
	}
	if len(store.Envelopes()) != 1 {
		t.Fatalf("reminder must not repeat for the same phase")
	}
}
