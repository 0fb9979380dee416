package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/instruction/phase-service/application"
	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
	"quorum/contexts/instruction/phase-service/ports"
)

// OpenPhaseCommand opens a discussion or vote period on a dossier.
type OpenPhaseCommand struct {
	DossierID   string
	ActorID     string
	Kind        entities.Kind
	Ballot      entities.Ballot
	Description string
}

// ExtendPhaseCommand pushes the target close date out by whole days. The
// target date drives reminders only; it never closes the phase.
type ExtendPhaseCommand struct {
	PhaseID        string
	ActorID        string
	AdditionalDays int
}

// ClosePhaseCommand terminates an active phase.
type ClosePhaseCommand struct {
	PhaseID string
	ActorID string
}

// PhaseUseCase orchestrates phase lifecycle commands. The single-active-phase
// invariant is delegated to the repository so the check and the insert share
// one atomic unit.
type PhaseUseCase struct {
	Phases   ports.PhaseRepository
	Dossiers ports.DossierState
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc PhaseUseCase) OpenPhase(ctx context.Context, cmd OpenPhaseCommand) (entities.Phase, error) {
	logger := application.ResolveLogger(uc.Logger)
	dossierID := strings.TrimSpace(cmd.DossierID)
	if dossierID == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
	}

	ballot := cmd.Ballot
	switch cmd.Kind {
	case entities.KindDiscussion:
		if ballot != "" {
			return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
		}
	case entities.KindVote:
		if ballot == "" {
			ballot = entities.BallotAvis
		}
		if ballot != entities.BallotAvis && ballot != entities.BallotNote {
			return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
		}
	default:
		return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
	}

	status, err := uc.Dossiers.GetDossierStatus(ctx, dossierID)
	if err != nil {
		return entities.Phase{}, err
	}
	if status != "EN_COURS" {
		logger.Warn("phase open rejected, dossier not under review",
			"event", "phase_open_rejected",
			"module", "instruction/phase-service",
			"layer", "application",
			"dossier_id", dossierID,
			"dossier_status", status,
		)
		return entities.Phase{}, domainerrors.ErrDossierNotUnderReview
	}

	now := uc.now()
	phaseID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Phase{}, err
	}
	phase := entities.Phase{
		PhaseID:     phaseID,
		DossierID:   dossierID,
		Kind:        cmd.Kind,
		Ballot:      ballot,
		Description: strings.TrimSpace(cmd.Description),
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Phases.CreatePhase(ctx, phase); err != nil {
		return entities.Phase{}, err
	}
	if err := uc.appendPhaseEvent(ctx, "phase.opened", phase, cmd.ActorID, now, nil); err != nil {
		return entities.Phase{}, err
	}

	logger.Info("phase opened",
		"event", "phase_opened",
		"module", "instruction/phase-service",
		"layer", "application",
		"phase_id", phase.PhaseID,
		"dossier_id", phase.DossierID,
		"kind", string(phase.Kind),
		"ballot", string(phase.Ballot),
	)
	return phase, nil
}

func (uc PhaseUseCase) ExtendPhase(ctx context.Context, cmd ExtendPhaseCommand) (entities.Phase, error) {
	logger := application.ResolveLogger(uc.Logger)
	phaseID := strings.TrimSpace(cmd.PhaseID)
	if phaseID == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
	}
	if cmd.AdditionalDays <= 0 {
		return entities.Phase{}, domainerrors.ErrInvalidExtension
	}

	phase, err := uc.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return entities.Phase{}, err
	}
	if !phase.Active() {
		return entities.Phase{}, domainerrors.ErrPhaseClosed
	}

	now := uc.now()
	base := now
	if phase.TargetCloseAt != nil {
		base = phase.TargetCloseAt.UTC()
	}
	target := base.AddDate(0, 0, cmd.AdditionalDays)
	if err := uc.Phases.SetTargetClose(ctx, phaseID, target, now); err != nil {
		return entities.Phase{}, err
	}
	phase.TargetCloseAt = &target
	phase.UpdatedAt = now
	if err := uc.appendPhaseEvent(ctx, "phase.extended", phase, cmd.ActorID, now, map[string]any{
		"additional_days": cmd.AdditionalDays,
		"target_close_at": target.Format(time.RFC3339),
	}); err != nil {
		return entities.Phase{}, err
	}

	logger.Info("phase extended",
		"event", "phase_extended",
		"module", "instruction/phase-service",
		"layer", "application",
		"phase_id", phase.PhaseID,
		"dossier_id", phase.DossierID,
		"additional_days", cmd.AdditionalDays,
		"target_close_at", target.Format(time.RFC3339),
	)
	return phase, nil
}

func (uc PhaseUseCase) ClosePhase(ctx context.Context, cmd ClosePhaseCommand) (entities.Phase, error) {
	logger := application.ResolveLogger(uc.Logger)
	phaseID := strings.TrimSpace(cmd.PhaseID)
	if phaseID == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Phase{}, domainerrors.ErrInvalidPhaseInput
	}

	now := uc.now()
	phase, err := uc.Phases.ClosePhase(ctx, phaseID, now)
	if err != nil {
		return entities.Phase{}, err
	}
	if err := uc.appendPhaseEvent(ctx, "phase.closed", phase, cmd.ActorID, now, nil); err != nil {
		return entities.Phase{}, err
	}

	logger.Info("phase closed",
		"event", "phase_closed",
		"module", "instruction/phase-service",
		"layer", "application",
		"phase_id", phase.PhaseID,
		"dossier_id", phase.DossierID,
		"kind", string(phase.Kind),
	)
	return phase, nil
}

func (uc PhaseUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
