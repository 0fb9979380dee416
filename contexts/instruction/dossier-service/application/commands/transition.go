package commands

import (
	"context"
	"strings"
	"time"

	application "quorum/contexts/instruction/dossier-service/application"
	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
)

// ReviewCompletenessCommand marks the intake completeness outcome.
type ReviewCompletenessCommand struct {
	DossierID string
	ActorID   string
	Complete  bool
	Comment   string
}

// StartReviewCommand moves a complete dossier under collegial review.
type StartReviewCommand struct {
	DossierID string
	ActorID   string
}

// FinalizeDossierCommand closes the dossier with an explicit decision, or a
// decision derived from the latest closed VOTE phase when Auto is set.
type FinalizeDossierCommand struct {
	DossierID string
	ActorID   string
	Decision  entities.Status
	Auto      bool
}

func (uc DossierUseCase) ReviewCompleteness(ctx context.Context, cmd ReviewCompletenessCommand) (entities.Dossier, error) {
	target := entities.StatusIncomplet
	if cmd.Complete {
		target = entities.StatusComplet
	}
	dossier, err := uc.transition(ctx, cmd.DossierID, target, cmd.ActorID, cmd.Comment)
	if err != nil {
		return entities.Dossier{}, err
	}

	if body := strings.TrimSpace(cmd.Comment); body != "" && uc.Comments != nil {
		if err := uc.Comments.AppendDossierComment(ctx, dossier.DossierID, strings.TrimSpace(cmd.ActorID), body); err != nil {
			return entities.Dossier{}, err
		}
	}
	return dossier, nil
}

func (uc DossierUseCase) StartReview(ctx context.Context, cmd StartReviewCommand) (entities.Dossier, error) {
	// Status write only; phase creation is a separate explicit call to the
	// phase manager.
	return uc.transition(ctx, cmd.DossierID, entities.StatusEnCours, cmd.ActorID, "")
}

func (uc DossierUseCase) FinalizeDossier(ctx context.Context, cmd FinalizeDossierCommand) (entities.Dossier, error) {
	logger := application.ResolveLogger(uc.Logger)
	dossierID := strings.TrimSpace(cmd.DossierID)
	if dossierID == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Dossier{}, domainerrors.ErrInvalidDossierInput
	}

	open, err := uc.Phases.HasActivePhase(ctx, dossierID)
	if err != nil {
		return entities.Dossier{}, err
	}
	if open {
		logger.Warn("dossier finalize blocked by active phase",
			"event", "dossier_finalize_blocked",
			"module", "instruction/dossier-service",
			"layer", "application",
			"dossier_id", dossierID,
		)
		return entities.Dossier{}, domainerrors.ErrActivePhaseOpen
	}

	decision := cmd.Decision
	comment := ""
	if cmd.Auto {
		if uc.Decisions == nil {
			return entities.Dossier{}, domainerrors.ErrDecisionNotDerivable
		}
		derived, err := uc.Decisions.DeriveDecision(ctx, dossierID)
		if err != nil {
			return entities.Dossier{}, err
		}
		decision = derived
		comment = "decision derivee du scrutin"
	}
	if decision != entities.StatusApprouve && decision != entities.StatusRejete {
		return entities.Dossier{}, domainerrors.ErrInvalidDossierInput
	}
	return uc.transition(ctx, dossierID, decision, cmd.ActorID, comment)
}

// transition validates the edge, persists the new status, and records the
// audit row plus the status_changed envelope.
func (uc DossierUseCase) transition(
	ctx context.Context,
	dossierID string,
	target entities.Status,
	actorID string,
	comment string,
) (entities.Dossier, error) {
	logger := application.ResolveLogger(uc.Logger)
	dossierID = strings.TrimSpace(dossierID)
	actorID = strings.TrimSpace(actorID)
	if dossierID == "" || actorID == "" {
		return entities.Dossier{}, domainerrors.ErrInvalidDossierInput
	}

	dossier, err := uc.Dossiers.GetDossier(ctx, dossierID)
	if err != nil {
		return entities.Dossier{}, err
	}
	if !dossier.Status.CanTransitionTo(target) {
		logger.Warn("dossier transition rejected",
			"event", "dossier_transition_rejected",
			"module", "instruction/dossier-service",
			"layer", "application",
			"dossier_id", dossierID,
			"from_status", string(dossier.Status),
			"to_status", string(target),
		)
		return entities.Dossier{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	from := dossier.Status
	// Compare-and-set on the status read above, so two callers racing out of
	// the same status commit at most one edge.
	if err := uc.Dossiers.TransitionStatus(ctx, dossierID, from, target, now); err != nil {
		return entities.Dossier{}, err
	}
	dossier.Status = target
	dossier.UpdatedAt = now
	if err := uc.recordTransition(ctx, dossier, from, target, actorID, comment, now); err != nil {
		return entities.Dossier{}, err
	}

	logger.Info("dossier status changed",
		"event", "dossier_status_changed",
		"module", "instruction/dossier-service",
		"layer", "application",
		"dossier_id", dossier.DossierID,
		"from_status", string(from),
		"to_status", string(target),
		"actor_id", actorID,
	)
	return dossier, nil
}

func (uc DossierUseCase) recordTransition(
	ctx context.Context,
	dossier entities.Dossier,
	from entities.Status,
	to entities.Status,
	actorID string,
	comment string,
	occurredAt time.Time,
) error {
	transitionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	if err := uc.Dossiers.AppendTransition(ctx, entities.StatusTransition{
		TransitionID: transitionID,
		DossierID:    dossier.DossierID,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      strings.TrimSpace(actorID),
		Comment:      strings.TrimSpace(comment),
		CreatedAt:    occurredAt,
	}); err != nil {
		return err
	}
	return uc.appendStatusEvent(ctx, dossier, from, to, actorID, occurredAt)
}
