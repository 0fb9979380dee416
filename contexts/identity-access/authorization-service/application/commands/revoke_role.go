package commands

import (
	"context"
	"strings"

	application "quorum/contexts/identity-access/authorization-service/application"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"
)

type RevokeRoleCommand struct {
	UserID  string
	Role    string
	ActorID string
	Reason  string
}

func (uc RoleUseCase) RevokeRole(ctx context.Context, cmd RevokeRoleCommand) (entities.RoleAssignment, error) {
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

	now := uc.now()
	assignment, err := uc.Repository.RevokeRole(ctx, ports.RevokeRoleInput{
		UserID:    userID,
		Role:      role,
		ActorID:   actorID,
		Reason:    strings.TrimSpace(cmd.Reason),
		RevokedAt: now,
	})
	if err != nil {
		return entities.RoleAssignment{}, err
	}

	uc.invalidate(ctx, logger, userID)
	if err := uc.appendRoleEvent(ctx, "authz.role_revoked", assignment, actorID, now); err != nil {
		return entities.RoleAssignment{}, err
	}

	logger.Info("role revoked",
		"event", "authz_role_revoked",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"user_id", userID,
		"role", string(role),
		"actor_id", actorID,
	)
	return assignment, nil
}
