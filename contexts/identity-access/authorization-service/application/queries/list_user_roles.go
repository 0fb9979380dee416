package queries

import (
	"context"
	"strings"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"
)

type ListUserRolesUseCase struct {
	Repository ports.Repository
}

func (u ListUserRolesUseCase) Execute(ctx context.Context, userID string) ([]entities.RoleAssignment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidUserID
	}
	return u.Repository.ListUserRoles(ctx, strings.TrimSpace(userID))
}
