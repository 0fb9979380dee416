package bootstrap

import (
	"context"
	"errors"

	commentcommands "quorum/contexts/deliberation/comment-service/application/commands"
	votequeries "quorum/contexts/deliberation/voting-engine/application/queries"
	voteerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	votingservices "quorum/contexts/deliberation/voting-engine/domain/services"
	dossierentities "quorum/contexts/instruction/dossier-service/domain/entities"
	dossiererrors "quorum/contexts/instruction/dossier-service/domain/errors"
)

// voteDecisionSource adapts the voting engine's outcome derivation to the
// dossier state machine's DecisionSource port.
type voteDecisionSource struct {
	results votequeries.ResultsUseCase
}

func (d voteDecisionSource) DeriveDecision(ctx context.Context, dossierID string) (dossierentities.Status, error) {
	outcome, err := d.results.DeriveDossierOutcome(ctx, dossierID)
	if err != nil {
		if errors.Is(err, voteerrors.ErrNoVotes) || errors.Is(err, voteerrors.ErrPhaseNotFound) {
			return "", dossiererrors.ErrDecisionNotDerivable
		}
		return "", err
	}
	if outcome == votingservices.OutcomeApprouve {
		return dossierentities.StatusApprouve, nil
	}
	return dossierentities.StatusRejete, nil
}

// dossierCommentAppender adapts the comment thread to the dossier service's
// CommentAppender port for completeness-review annotations.
type dossierCommentAppender struct {
	comments commentcommands.CommentUseCase
}

func (a dossierCommentAppender) AppendDossierComment(ctx context.Context, dossierID string, authorID string, body string) error {
	_, err := a.comments.AddComment(ctx, commentcommands.AddCommentCommand{
		DossierID: dossierID,
		AuthorID:  authorID,
		Body:      body,
	})
	return err
}
