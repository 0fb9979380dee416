package queries

import (
	"context"
	"strings"

	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
	"quorum/contexts/instruction/dossier-service/ports"
)

// DossierUseCase serves read-only dossier views.
type DossierUseCase struct {
	Dossiers ports.DossierRepository
}

func (uc DossierUseCase) GetDossier(ctx context.Context, dossierID string) (entities.Dossier, error) {
	if strings.TrimSpace(dossierID) == "" {
		return entities.Dossier{}, domainerrors.ErrInvalidDossierInput
	}
	return uc.Dossiers.GetDossier(ctx, strings.TrimSpace(dossierID))
}

// ListDossiers filters by status when one is supplied; an empty status lists
// everything.
func (uc DossierUseCase) ListDossiers(ctx context.Context, status entities.Status) ([]entities.Dossier, error) {
	return uc.Dossiers.ListDossiers(ctx, status)
}

// ListTransitions returns the audit trail in chronological order.
func (uc DossierUseCase) ListTransitions(ctx context.Context, dossierID string) ([]entities.StatusTransition, error) {
	if strings.TrimSpace(dossierID) == "" {
		return nil, domainerrors.ErrInvalidDossierInput
	}
	if _, err := uc.Dossiers.GetDossier(ctx, strings.TrimSpace(dossierID)); err != nil {
		return nil, err
	}
	return uc.Dossiers.ListTransitions(ctx, strings.TrimSpace(dossierID))
}
