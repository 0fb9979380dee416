package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/instruction/phase-service/application/commands"
	"quorum/contexts/instruction/phase-service/application/queries"
	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
	httptransport "quorum/contexts/instruction/phase-service/transport/http"
)

type Handler struct {
	Phases commands.PhaseUseCase
	Reads  queries.PhaseUseCase
	Logger *slog.Logger
}

func (h Handler) OpenPhaseHandler(
	ctx context.Context,
	actorID string,
	kind string,
	dossierID string,
	description string,
	ballot string,
) (httptransport.PhaseResponse, error) {
	parsedKind, ok := entities.ParseKind(kind)
	if !ok {
		return httptransport.PhaseResponse{}, domainerrors.ErrInvalidPhaseInput
	}
	var parsedBallot entities.Ballot
	if ballot != "" {
		parsed, ok := entities.ParseBallot(ballot)
		if !ok {
			return httptransport.PhaseResponse{}, domainerrors.ErrInvalidPhaseInput
		}
		parsedBallot = parsed
	}
	phase, err := h.Phases.OpenPhase(ctx, commands.OpenPhaseCommand{
		DossierID:   dossierID,
		ActorID:     actorID,
		Kind:        parsedKind,
		Ballot:      parsedBallot,
		Description: description,
	})
	if err != nil {
		return httptransport.PhaseResponse{}, err
	}
	return mapPhase(phase), nil
}

func (h Handler) ExtendPhaseHandler(
	ctx context.Context,
	actorID string,
	phaseID string,
	additionalDays int,
) (httptransport.PhaseResponse, error) {
	phase, err := h.Phases.ExtendPhase(ctx, commands.ExtendPhaseCommand{
		PhaseID:        phaseID,
		ActorID:        actorID,
		AdditionalDays: additionalDays,
	})
	if err != nil {
		return httptransport.PhaseResponse{}, err
	}
	return mapPhase(phase), nil
}

func (h Handler) ClosePhaseHandler(ctx context.Context, actorID string, phaseID string) (httptransport.PhaseResponse, error) {
	phase, err := h.Phases.ClosePhase(ctx, commands.ClosePhaseCommand{
		PhaseID: phaseID,
		ActorID: actorID,
	})
	if err != nil {
		return httptransport.PhaseResponse{}, err
	}
	return mapPhase(phase), nil
}

func (h Handler) ListPhasesHandler(ctx context.Context, dossierID string) (httptransport.PhaseListResponse, error) {
	phases, err := h.Reads.ListPhases(ctx, dossierID)
	if err != nil {
		return httptransport.PhaseListResponse{}, err
	}
	items := make([]httptransport.PhaseResponse, 0, len(phases))
	for _, phase := range phases {
		items = append(items, mapPhase(phase))
	}
	return httptransport.PhaseListResponse{Items: items}, nil
}

func (h Handler) GetActivePhaseHandler(ctx context.Context, dossierID string) (httptransport.PhaseResponse, bool, error) {
	phase, found, err := h.Reads.GetActivePhase(ctx, dossierID)
	if err != nil || !found {
		return httptransport.PhaseResponse{}, found, err
	}
	return mapPhase(phase), true, nil
}

func mapPhase(phase entities.Phase) httptransport.PhaseResponse {
	resp := httptransport.PhaseResponse{
		PhaseID:     phase.PhaseID,
		DossierID:   phase.DossierID,
		Kind:        string(phase.Kind),
		Ballot:      string(phase.Ballot),
		Description: phase.Description,
		StartedAt:   phase.StartedAt.Format(time.RFC3339),
		Active:      phase.Active(),
	}
	if phase.EndedAt != nil {
		resp.EndedAt = phase.EndedAt.Format(time.RFC3339)
	}
	if phase.TargetCloseAt != nil {
		resp.TargetCloseAt = phase.TargetCloseAt.Format(time.RFC3339)
	}
	return resp
}
