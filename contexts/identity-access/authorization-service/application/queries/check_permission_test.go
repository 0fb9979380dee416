package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"quorum/contexts/identity-access/authorization-service/adapters/memory"
	"quorum/contexts/identity-access/authorization-service/application/commands"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	"quorum/contexts/identity-access/authorization-service/domain/services"
	"quorum/contexts/identity-access/authorization-service/ports"
)

type failingRepository struct{}

func (failingRepository) GrantRole(context.Context, ports.GrantRoleInput) (entities.RoleAssignment, error) {
	return entities.RoleAssignment{}, errors.New("store unavailable")
}

func (failingRepository) RevokeRole(context.Context, ports.RevokeRoleInput) (entities.RoleAssignment, error) {
	return entities.RoleAssignment{}, errors.New("store unavailable")
}

func (failingRepository) ListUserRoles(context.Context, string) ([]entities.RoleAssignment, error) {
	return nil, errors.New("store unavailable")
}

func (failingRepository) ListEffectivePermissions(context.Context, string) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func TestCheckPermissionCacheFirst(t *testing.T) {
	store := memory.NewStore()
	roles := commands.RoleUseCase{
		Repository: store,
		Cache:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
	if _, err := roles.GrantRole(context.Background(), commands.GrantRoleCommand{
		UserID:  "user-1",
		Role:    "MEMBRE_COMITE",
		ActorID: "admin-1",
	}); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	check := CheckPermissionUseCase{
		Repository: store,
		Cache:      store,
		Clock:      store,
		CacheTTL:   5 * time.Minute,
	}

	first, err := check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-1",
		Permission: services.PermVoteExprimer,
	})
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	if !first.Allowed || first.CacheHit {
		t.Fatalf("expected allow on cold cache, got %+v", first)
	}

	second, err := check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-1",
		Permission: services.PermVoteExprimer,
	})
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if !second.Allowed || !second.CacheHit {
		t.Fatalf("expected cached allow, got %+v", second)
	}
}

func TestCheckPermissionDeniedWithoutRole(t *testing.T) {
	store := memory.NewStore()
	check := CheckPermissionUseCase{
		Repository: store,
		Cache:      store,
		Clock:      store,
	}

	decision, err := check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-without-role",
		Permission: services.PermDossierDecision,
	})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny without role")
	}
	if decision.Reason != "permission_missing" {
		t.Fatalf("unexpected reason %s", decision.Reason)
	}
}

func TestCheckPermissionRevocationInvalidatesCache(t *testing.T) {
	store := memory.NewStore()
	roles := commands.RoleUseCase{
		Repository: store,
		Cache:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
	check := CheckPermissionUseCase{
		Repository: store,
		Cache:      store,
		Clock:      store,
	}

	if _, err := roles.GrantRole(context.Background(), commands.GrantRoleCommand{
		UserID:  "user-1",
		Role:    "COORDINATEUR",
		ActorID: "admin-1",
	}); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	decision, err := check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-1",
		Permission: services.PermPhaseOuvrir,
	})
	if err != nil || !decision.Allowed {
		t.Fatalf("expected allow before revoke, got %+v (%v)", decision, err)
	}

	if _, err := roles.RevokeRole(context.Background(), commands.RevokeRoleCommand{
		UserID:  "user-1",
		Role:    "COORDINATEUR",
		ActorID: "admin-1",
	}); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	decision, err = check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-1",
		Permission: services.PermPhaseOuvrir,
	})
	if err != nil {
		t.Fatalf("check after revoke failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("revocation must take effect immediately")
	}
}

func TestCheckPermissionDenyByDefaultOnLookupFailure(t *testing.T) {
	check := CheckPermissionUseCase{
		Repository: failingRepository{},
	}

	decision, err := check.Execute(context.Background(), CheckPermissionQuery{
		UserID:     "user-1",
		Permission: services.PermDossierConsulter,
	})
	if err != nil {
		t.Fatalf("deny by default must not surface an error, got %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected deny on lookup failure")
	}
	if decision.Reason != "deny_by_default" {
		t.Fatalf("unexpected reason %s", decision.Reason)
	}
}
