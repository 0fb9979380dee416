package queries

import (
	"context"
	"strings"

	"quorum/contexts/deliberation/comment-service/domain/entities"
	domainerrors "quorum/contexts/deliberation/comment-service/domain/errors"
	"quorum/contexts/deliberation/comment-service/ports"
)

type CommentUseCase struct {
	Comments ports.CommentRepository
}

func (uc CommentUseCase) ListDossierComments(ctx context.Context, dossierID string) ([]entities.Comment, error) {
	dossierID = strings.TrimSpace(dossierID)
	if dossierID == "" {
		return nil, domainerrors.ErrInvalidCommentInput
	}
	return uc.Comments.ListDossierComments(ctx, dossierID)
}

func (uc CommentUseCase) ListPhaseComments(ctx context.Context, phaseID string) ([]entities.Comment, error) {
	phaseID = strings.TrimSpace(phaseID)
	if phaseID == "" {
		return nil, domainerrors.ErrInvalidCommentInput
	}
	return uc.Comments.ListPhaseComments(ctx, phaseID)
}

func (uc CommentUseCase) CountComments(ctx context.Context, dossierID string) (int64, error) {
	dossierID = strings.TrimSpace(dossierID)
	if dossierID == "" {
		return 0, domainerrors.ErrInvalidCommentInput
	}
	return uc.Comments.CountComments(ctx, dossierID)
}
