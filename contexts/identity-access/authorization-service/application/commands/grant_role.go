package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/identity-access/authorization-service/application"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// GrantRoleCommand contains transport-agnostic input for role assignment.
type GrantRoleCommand struct {
	UserID  string
	Role    string
	ActorID string
	Reason  string
}

// RoleUseCase coordinates role assignment and revocation.
type RoleUseCase struct {
	Repository ports.Repository
	Cache      ports.PermissionCache
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc RoleUseCase) GrantRole(ctx context.Context, cmd GrantRoleCommand) (entities.RoleAssignment, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if userID == "" {
		return entities.RoleAssignment{}, domainerrors.ErrInvalidUserID
	}
	if actorID == "" {
		return entities.RoleAssignment{}, domainerrors.ErrInvalidActorID
	}
	role, ok := entities.ParseRole(strings.TrimSpace(cmd.Role))
	if !ok {
		return entities.RoleAssignment{}, domainerrors.ErrInvalidRole
	}

	assignmentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.RoleAssignment{}, err
	}
	now := uc.now()
	assignment, err := uc.Repository.GrantRole(ctx, ports.GrantRoleInput{
		AssignmentID: assignmentID,
		UserID:       userID,
		Role:         role,
		ActorID:      actorID,
		Reason:       strings.TrimSpace(cmd.Reason),
		AssignedAt:   now,
	})
	if err != nil {
		return entities.RoleAssignment{}, err
	}

	uc.invalidate(ctx, logger, userID)
	if err := uc.appendRoleEvent(ctx, "authz.role_granted", assignment, actorID, now); err != nil {
		return entities.RoleAssignment{}, err
	}

	logger.Info("role granted",
		"event", "authz_role_granted",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"user_id", userID,
		"role", string(role),
		"actor_id", actorID,
	)
	return assignment, nil
}

func (uc RoleUseCase) invalidate(ctx context.Context, logger *slog.Logger, userID string) {
	if uc.Cache == nil {
		return
	}
	if err := uc.Cache.Invalidate(ctx, userID); err != nil {
		logger.Warn("permission cache invalidate failed",
			"event", "authz_cache_invalidation_failed",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

func (uc RoleUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc RoleUseCase) appendRoleEvent(
	ctx context.Context,
	eventType string,
	assignment entities.RoleAssignment,
	actorID string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"assignment_id": assignment.AssignmentID,
		"user_id":       assignment.UserID,
		"role":          string(assignment.Role),
		"actor_id":      actorID,
		"occurred_at":   occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "authorization-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "user_id",
		PartitionKey:     assignment.UserID,
		Data:             payload,
	})
}
