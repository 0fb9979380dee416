package ports

import (
	"context"
	"time"

	contractsv1 "quorum/contracts/gen/events/v1"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for commands/outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PermissionCache stores effective permissions with TTL semantics.
type PermissionCache interface {
	Get(ctx context.Context, userID string, now time.Time) ([]string, bool, error)
	Set(ctx context.Context, userID string, permissions []string, expiresAt time.Time) error
	Invalidate(ctx context.Context, userID string) error
}

// GrantRoleInput is persisted as one assignment row.
type GrantRoleInput struct {
	AssignmentID string
	UserID       string
	Role         entities.Role
	ActorID      string
	Reason       string
	AssignedAt   time.Time
}

// RevokeRoleInput closes the active assignment of (user, role).
type RevokeRoleInput struct {
	UserID    string
	Role      entities.Role
	ActorID   string
	Reason    string
	RevokedAt time.Time
}

// Repository is the write/read boundary for role assignment state.
type Repository interface {
	// GrantRole fails with ErrRoleAlreadyAssigned when an active assignment
	// for (user, role) exists.
	GrantRole(ctx context.Context, input GrantRoleInput) (entities.RoleAssignment, error)
	// RevokeRole fails with ErrRoleNotAssigned when no active assignment
	// exists.
	RevokeRole(ctx context.Context, input RevokeRoleInput) (entities.RoleAssignment, error)
	ListUserRoles(ctx context.Context, userID string) ([]entities.RoleAssignment, error)
	// ListEffectivePermissions flattens the permission bundles of the user's
	// active roles.
	ListEffectivePermissions(ctx context.Context, userID string) ([]string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}
