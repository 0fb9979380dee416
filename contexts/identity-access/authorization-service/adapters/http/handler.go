package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/identity-access/authorization-service/application/commands"
	"quorum/contexts/identity-access/authorization-service/application/queries"
	"quorum/contexts/identity-access/authorization-service/domain/entities"
	httptransport "quorum/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CheckPermission queries.CheckPermissionUseCase
	ListRoles       queries.ListUserRolesUseCase
	Roles           commands.RoleUseCase
	Logger          *slog.Logger
}

func (h Handler) CheckPermissionHandler(
	ctx context.Context,
	userID string,
	request httptransport.CheckPermissionRequest,
) (httptransport.CheckPermissionResponse, error) {
	decision, err := h.CheckPermission.Execute(ctx, queries.CheckPermissionQuery{
		UserID:     userID,
		Permission: request.Permission,
	})
	if err != nil {
		return httptransport.CheckPermissionResponse{}, err
	}
	return httptransport.CheckPermissionResponse{
		UserID:     decision.UserID,
		Permission: decision.Permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
		CheckedAt:  decision.CheckedAt.Format(time.RFC3339),
		CacheHit:   decision.CacheHit,
	}, nil
}

// Allowed is the boolean permission gate used by route middleware.
func (h Handler) Allowed(ctx context.Context, userID string, permission string) (bool, error) {
	decision, err := h.CheckPermission.Execute(ctx, queries.CheckPermissionQuery{
		UserID:     userID,
		Permission: permission,
	})
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	actorID string,
	request httptransport.GrantRoleRequest,
) (httptransport.RoleAssignmentResponse, error) {
	assignment, err := h.Roles.GrantRole(ctx, commands.GrantRoleCommand{
		UserID:  request.UserID,
		Role:    request.Role,
		ActorID: actorID,
		Reason:  request.Reason,
	})
	if err != nil {
		return httptransport.RoleAssignmentResponse{}, err
	}
	return mapAssignment(assignment), nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	actorID string,
	request httptransport.RevokeRoleRequest,
) (httptransport.RoleAssignmentResponse, error) {
	assignment, err := h.Roles.RevokeRole(ctx, commands.RevokeRoleCommand{
		UserID:  request.UserID,
		Role:    request.Role,
		ActorID: actorID,
		Reason:  request.Reason,
	})
	if err != nil {
		return httptransport.RoleAssignmentResponse{}, err
	}
	return mapAssignment(assignment), nil
}

func (h Handler) ListUserRolesHandler(ctx context.Context, userID string) (httptransport.UserRolesResponse, error) {
	assignments, err := h.ListRoles.Execute(ctx, userID)
	if err != nil {
		return httptransport.UserRolesResponse{}, err
	}
	items := make([]httptransport.RoleAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, mapAssignment(assignment))
	}
	return httptransport.UserRolesResponse{
		UserID: userID,
		Items:  items,
	}, nil
}

func mapAssignment(assignment entities.RoleAssignment) httptransport.RoleAssignmentResponse {
	resp := httptransport.RoleAssignmentResponse{
		AssignmentID: assignment.AssignmentID,
		UserID:       assignment.UserID,
		Role:         string(assignment.Role),
		AssignedBy:   assignment.AssignedBy,
		Reason:       assignment.Reason,
		AssignedAt:   assignment.AssignedAt.Format(time.RFC3339),
		Active:       assignment.Active(),
	}
	if assignment.RevokedAt != nil {
		resp.RevokedAt = assignment.RevokedAt.Format(time.RFC3339)
	}
	return resp
}
