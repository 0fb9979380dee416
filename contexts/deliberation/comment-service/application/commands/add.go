package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/deliberation/comment-service/application"
	"quorum/contexts/deliberation/comment-service/domain/entities"
	domainerrors "quorum/contexts/deliberation/comment-service/domain/errors"
	"quorum/contexts/deliberation/comment-service/ports"
)

// AddCommentCommand appends one comment. Exactly one of DossierID/PhaseID
// must carry the scope; a phase-scoped comment inherits the phase's dossier.
type AddCommentCommand struct {
	DossierID string
	PhaseID   string
	AuthorID  string
	Body      string
}

type CommentUseCase struct {
	Comments ports.CommentRepository
	Dossiers ports.DossierState
	Phases   ports.PhaseState
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CommentUseCase) AddComment(ctx context.Context, cmd AddCommentCommand) (entities.Comment, error) {
	logger := application.ResolveLogger(uc.Logger)
	dossierID := strings.TrimSpace(cmd.DossierID)
	phaseID := strings.TrimSpace(cmd.PhaseID)
	authorID := strings.TrimSpace(cmd.AuthorID)
	body := strings.TrimSpace(cmd.Body)
	if authorID == "" || body == "" {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}
	if (dossierID == "") == (phaseID == "") {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}

	if phaseID != "" {
		resolved, err := uc.Phases.GetPhaseDossier(ctx, phaseID)
		if err != nil {
			return entities.Comment{}, err
		}
		dossierID = resolved
	} else {
		exists, err := uc.Dossiers.DossierExists(ctx, dossierID)
		if err != nil {
			return entities.Comment{}, err
		}
		if !exists {
			return entities.Comment{}, domainerrors.ErrDossierNotFound
		}
	}

	commentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	now := uc.now()
	comment := entities.Comment{
		CommentID: commentID,
		DossierID: dossierID,
		PhaseID:   phaseID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
	}
	stored, err := uc.Comments.AppendComment(ctx, comment)
	if err != nil {
		return entities.Comment{}, err
	}
	if err := uc.appendCommentEvent(ctx, stored, now); err != nil {
		return entities.Comment{}, err
	}

	logger.Info("comment added",
		"event", "comment_added",
		"module", "deliberation/comment-service",
		"layer", "application",
		"comment_id", stored.CommentID,
		"dossier_id", stored.DossierID,
		"phase_id", stored.PhaseID,
		"author_id", stored.AuthorID,
	)
	return stored, nil
}

func (uc CommentUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc CommentUseCase) appendCommentEvent(ctx context.Context, comment entities.Comment, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]any{
		"comment_id":  comment.CommentID,
		"dossier_id":  comment.DossierID,
		"phase_id":    comment.PhaseID,
		"author_id":   comment.AuthorID,
		"occurred_at": occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	// Comment events are partitioned by dossier so one dossier's thread
	// replays in order.
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "comment.added",
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "comment-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "dossier_id",
		PartitionKey:     comment.DossierID,
		Data:             payload,
	})
}
