package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/instruction/dossier-service/application"
	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
	"quorum/contexts/instruction/dossier-service/ports"
)

// SubmitDossierCommand opens a new dossier in SOUMIS.
type SubmitDossierCommand struct {
	ActorID        string
	Reference      string
	RequestTypeID  string
	SubmitterName  string
	SubmitterEmail string
}

// DossierUseCase orchestrates state machine commands: submission,
// completeness review, review opening, and finalization. Transitions are
// validated against the declared edge set and every change appends an audit
// row plus a dossier.status_changed outbox envelope.
type DossierUseCase struct {
	Dossiers  ports.DossierRepository
	Phases    ports.PhaseState
	Comments  ports.CommentAppender
	Decisions ports.DecisionSource
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc DossierUseCase) SubmitDossier(ctx context.Context, cmd SubmitDossierCommand) (entities.Dossier, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ActorID) == "" ||
		strings.TrimSpace(cmd.RequestTypeID) == "" ||
		strings.TrimSpace(cmd.SubmitterName) == "" {
		logger.Warn("dossier submit validation failed",
			"event", "dossier_submit_validation_failed",
			"module", "instruction/dossier-service",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Dossier{}, domainerrors.ErrInvalidDossierInput
	}

	now := uc.now()
	dossierID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Dossier{}, err
	}
	reference := strings.TrimSpace(cmd.Reference)
	if reference == "" {
		reference = newReference(dossierID, now)
	}

	dossier := entities.Dossier{
		DossierID:      dossierID,
		Reference:      reference,
		Status:         entities.StatusSoumis,
		RequestTypeID:  strings.TrimSpace(cmd.RequestTypeID),
		SubmitterName:  strings.TrimSpace(cmd.SubmitterName),
		SubmitterEmail: strings.TrimSpace(cmd.SubmitterEmail),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Dossiers.SaveDossier(ctx, dossier); err != nil {
		return entities.Dossier{}, err
	}
	if err := uc.recordTransition(ctx, dossier, "", entities.StatusSoumis, cmd.ActorID, "", now); err != nil {
		return entities.Dossier{}, err
	}

	logger.Info("dossier submitted",
		"event", "dossier_submitted",
		"module", "instruction/dossier-service",
		"layer", "application",
		"dossier_id", dossier.DossierID,
		"reference", dossier.Reference,
		"request_type_id", dossier.RequestTypeID,
	)
	return dossier, nil
}

func (uc DossierUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// newReference builds the human-readable dossier code, e.g. DOS-2026-4F2A91C3.
func newReference(dossierID string, now time.Time) string {
	compact := strings.ToUpper(strings.ReplaceAll(dossierID, "-", ""))
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "DOS-" + now.Format("2006") + "-" + compact
}
