package queries

import (
	"context"
	"strings"

	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
	"quorum/contexts/instruction/phase-service/ports"
)

// PhaseUseCase serves read-only phase views.
type PhaseUseCase struct {
	Phases ports.PhaseRepository
}

func (uc PhaseUseCase) GetPhase(ctx context.Context, phaseID string) (entities.Phase, error) {
	if strings.TrimSpace(phaseID) == "" {
		return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
	}
	return uc.Phases.GetPhase(ctx, strings.TrimSpace(phaseID))
}

func (uc PhaseUseCase) GetActivePhase(ctx context.Context, dossierID string) (entities.Phase, bool, error) {
	if strings.TrimSpace(dossierID) == "" {
		return entities.Phase{}, false, domainerrors.ErrInvalidPhaseInput
	}
	return uc.Phases.GetActivePhase(ctx, strings.TrimSpace(dossierID))
}

// ListPhases returns the dossier's phases ordered by start date ascending.
func (uc PhaseUseCase) ListPhases(ctx context.Context, dossierID string) ([]entities.Phase, error) {
	if strings.TrimSpace(dossierID) == "" {
		return nil, domainerrors.ErrInvalidPhaseInput
	}
	return uc.Phases.ListPhases(ctx, strings.TrimSpace(dossierID))
}
