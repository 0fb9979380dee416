package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/identity-access/authorization-service/adapters/memory"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
)

func newRoleFixture() (RoleUseCase, *memory.Store) {
	store := memory.NewStore()
	return RoleUseCase{
		Repository: store,
		Cache:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}, store
}

func TestGrantRoleLifecycle(t *testing.T) {
	useCase, store := newRoleFixture()

	assignment, err := useCase.GrantRole(context.Background(), GrantRoleCommand{
		UserID:  "user-1",
		Role:    "MEMBRE_COMITE",
		ActorID: "admin-1",
		Reason:  "nomination au comite",
	})
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if assignment.Role != entities.RoleMembreComite || !assignment.Active() {
		t.Fatalf("unexpected assignment %+v", assignment)
	}

	revoked, err := useCase.RevokeRole(context.Background(), RevokeRoleCommand{
		UserID:  "user-1",
		Role:    "MEMBRE_COMITE",
		ActorID: "admin-1",
		Reason:  "fin de mandat",
	})
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if revoked.Active() {
		t.Fatalf("revoked assignment must not stay active")
	}

	envelopes := store.Envelopes()
	if len(envelopes) != 2 {
		t.Fatalf("expected grant and revoke envelopes, got %d", len(envelopes))
	}
	if envelopes[0].EventType != "authz.role_granted" || envelopes[1].EventType != "authz.role_revoked" {
		t.Fatalf("unexpected event types %s/%s", envelopes[0].EventType, envelopes[1].EventType)
	}
}

func TestGrantRoleTwiceConflicts(t *testing.T) {
	useCase, _ := newRoleFixture()

	if _, err := useCase.GrantRole(context.Background(), GrantRoleCommand{
		UserID:  "user-1",
		Role:    "COORDINATEUR",
		ActorID: "admin-1",
	}); err != nil {
		t.Fatalf("first grant failed: %v", err)
	}
	_, err := useCase.GrantRole(context.Background(), GrantRoleCommand{
		UserID:  "user-1",
		Role:    "COORDINATEUR",
		ActorID: "admin-1",
	})
	if !errors.Is(err, domainerrors.ErrRoleAlreadyAssigned) {
		t.Fatalf("expected ErrRoleAlreadyAssigned, got %v", err)
	}
}

func TestRevokeRoleWithoutActiveAssignment(t *testing.T) {
	useCase, _ := newRoleFixture()

	_, err := useCase.RevokeRole(context.Background(), RevokeRoleCommand{
		UserID:  "user-unknown",
		Role:    "COORDINATEUR",
		ActorID: "admin-1",
	})
	if !errors.Is(err, domainerrors.ErrRoleNotAssigned) {
		t.Fatalf("expected ErrRoleNotAssigned, got %v", err)
	}
}

func TestRegrantAfterRevoke(t *testing.T) {
	useCase, _ := newRoleFixture()

	for _, step := range []string{"grant", "revoke", "grant"} {
		var err error
		switch step {
		case "grant":
			_, err = useCase.GrantRole(context.Background(), GrantRoleCommand{
				UserID:  "user-1",
				Role:    "AGENT_INSTRUCTION",
				ActorID: "admin-1",
			})
		case "revoke":
			_, err = useCase.RevokeRole(context.Background(), RevokeRoleCommand{
				UserID:  "user-1",
				Role:    "AGENT_INSTRUCTION",
				ActorID: "admin-1",
			})
		}
		if err != nil {
			t.Fatalf("%s failed: %v", step, err)
		}
	}
}

func TestGrantRoleValidation(t *testing.T) {
	useCase, _ := newRoleFixture()

	_, err := useCase.GrantRole(context.Background(), GrantRoleCommand{
		UserID:  "user-1",
		Role:    "SUPERVISEUR",
		ActorID: "admin-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	_, err = useCase.GrantRole(context.Background(), GrantRoleCommand{
		UserID: "user-1",
		Role:   "COORDINATEUR",
	})
	if !errors.Is(err, domainerrors.ErrInvalidActorID) {
		t.Fatalf("expected ErrInvalidActorID, got %v", err)
	}
}
