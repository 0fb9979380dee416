package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/instruction/dossier-service/application/commands"
	"quorum/contexts/instruction/dossier-service/application/queries"
	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
	httptransport "quorum/contexts/instruction/dossier-service/transport/http"
)

type Handler struct {
	Dossiers commands.DossierUseCase
	Reads    queries.DossierUseCase
	Logger   *slog.Logger
}

func (h Handler) SubmitDossierHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SubmitDossierRequest,
) (httptransport.DossierResponse, error) {
	dossier, err := h.Dossiers.SubmitDossier(ctx, commands.SubmitDossierCommand{
		ActorID:        actorID,
		Reference:      req.Reference,
		RequestTypeID:  req.RequestTypeID,
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
	})
	if err != nil {
		return httptransport.DossierResponse{}, err
	}
	return mapDossier(dossier), nil
}

// ChangeStatusHandler dispatches the statut query parameter to the matching
// state machine command.
func (h Handler) ChangeStatusHandler(
	ctx context.Context,
	actorID string,
	dossierID string,
	statut string,
	commentaire string,
	auto bool,
) (httptransport.DossierResponse, error) {
	target, ok := entities.ParseStatus(statut)
	if !ok && !auto {
		return httptransport.DossierResponse{}, domainerrors.ErrInvalidDossierInput
	}

	var (
		dossier entities.Dossier
		err     error
	)
	switch {
	case auto || target == entities.StatusApprouve || target == entities.StatusRejete:
		dossier, err = h.Dossiers.FinalizeDossier(ctx, commands.FinalizeDossierCommand{
			DossierID: dossierID,
			ActorID:   actorID,
			Decision:  target,
			Auto:      auto,
		})
	case target == entities.StatusComplet || target == entities.StatusIncomplet:
		dossier, err = h.Dossiers.ReviewCompleteness(ctx, commands.ReviewCompletenessCommand{
			DossierID: dossierID,
			ActorID:   actorID,
			Complete:  target == entities.StatusComplet,
			Comment:   commentaire,
		})
	case target == entities.StatusEnCours:
		dossier, err = h.Dossiers.StartReview(ctx, commands.StartReviewCommand{
			DossierID: dossierID,
			ActorID:   actorID,
		})
	default:
		return httptransport.DossierResponse{}, domainerrors.ErrInvalidTransition
	}
	if err != nil {
		return httptransport.DossierResponse{}, err
	}
	return mapDossier(dossier), nil
}

func (h Handler) GetDossierHandler(ctx context.Context, dossierID string) (httptransport.DossierResponse, error) {
	dossier, err := h.Reads.GetDossier(ctx, dossierID)
	if err != nil {
		return httptransport.DossierResponse{}, err
	}
	return mapDossier(dossier), nil
}

func (h Handler) ListDossiersHandler(ctx context.Context, statut string) (httptransport.DossierListResponse, error) {
	var status entities.Status
	if statut != "" {
		parsed, ok := entities.ParseStatus(statut)
		if !ok {
			return httptransport.DossierListResponse{}, domainerrors.ErrInvalidDossierInput
		}
		status = parsed
	}
	dossiers, err := h.Reads.ListDossiers(ctx, status)
	if err != nil {
		return httptransport.DossierListResponse{}, err
	}
	items := make([]httptransport.DossierResponse, 0, len(dossiers))
	for _, dossier := range dossiers {
		items = append(items, mapDossier(dossier))
	}
	return httptransport.DossierListResponse{Items: items}, nil
}

func (h Handler) ListTransitionsHandler(ctx context.Context, dossierID string) (httptransport.TransitionListResponse, error) {
	transitions, err := h.Reads.ListTransitions(ctx, dossierID)
	if err != nil {
		return httptransport.TransitionListResponse{}, err
	}
	items := make([]httptransport.TransitionResponse, 0, len(transitions))
	for _, transition := range transitions {
		items = append(items, httptransport.TransitionResponse{
			TransitionID: transition.TransitionID,
			DossierID:    transition.DossierID,
			FromStatus:   string(transition.FromStatus),
			ToStatus:     string(transition.ToStatus),
			ActorID:      transition.ActorID,
			Comment:      transition.Comment,
			CreatedAt:    transition.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.TransitionListResponse{Items: items}, nil
}

func mapDossier(dossier entities.Dossier) httptransport.DossierResponse {
	return httptransport.DossierResponse{
		DossierID:      dossier.DossierID,
		Reference:      dossier.Reference,
		Status:         string(dossier.Status),
		RequestTypeID:  dossier.RequestTypeID,
		SubmitterName:  dossier.SubmitterName,
		SubmitterEmail: dossier.SubmitterEmail,
		CreatedAt:      dossier.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      dossier.UpdatedAt.Format(time.RFC3339),
	}
}
