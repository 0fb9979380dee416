package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/deliberation/comment-service/application/commands"
	"quorum/contexts/deliberation/comment-service/application/queries"
	"quorum/contexts/deliberation/comment-service/domain/entities"
	httptransport "quorum/contexts/deliberation/comment-service/transport/http"
)

type Handler struct {
	Comments commands.CommentUseCase
	Reads    queries.CommentUseCase
	Logger   *slog.Logger
}

func (h Handler) AddCommentHandler(
	ctx context.Context,
	authorID string,
	dossierID string,
	phaseID string,
	body string,
) (httptransport.CommentResponse, error) {
	comment, err := h.Comments.AddComment(ctx, commands.AddCommentCommand{
		DossierID: dossierID,
		PhaseID:   phaseID,
		AuthorID:  authorID,
		Body:      body,
	})
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return mapComment(comment), nil
}

func (h Handler) ListDossierCommentsHandler(ctx context.Context, dossierID string) (httptransport.CommentListResponse, error) {
	comments, err := h.Reads.ListDossierComments(ctx, dossierID)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	return mapComments(comments), nil
}

func (h Handler) ListPhaseCommentsHandler(ctx context.Context, phaseID string) (httptransport.CommentListResponse, error) {
	comments, err := h.Reads.ListPhaseComments(ctx, phaseID)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	return mapComments(comments), nil
}

func (h Handler) CountCommentsHandler(ctx context.Context, dossierID string) (httptransport.CommentCountResponse, error) {
	count, err := h.Reads.CountComments(ctx, dossierID)
	if err != nil {
		return httptransport.CommentCountResponse{}, err
	}
	return httptransport.CommentCountResponse{
		DossierID: dossierID,
		Count:     count,
	}, nil
}

func mapComment(comment entities.Comment) httptransport.CommentResponse {
	return httptransport.CommentResponse{
		CommentID: comment.CommentID,
		DossierID: comment.DossierID,
		PhaseID:   comment.PhaseID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

func mapComments(comments []entities.Comment) httptransport.CommentListResponse {
	items := make([]httptransport.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, mapComment(comment))
	}
	return httptransport.CommentListResponse{
		Items: items,
		Total: len(items),
	}
}
