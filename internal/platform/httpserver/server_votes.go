package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	voteerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	votehttp "quorum/contexts/deliberation/voting-engine/transport/http"
)

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "vote.exprimer")
	if !ok {
		return
	}
	var req votehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	// An absent score stays distinguishable from a literal zero; the
	// placeholder fails ballot validation.
	score := -1
	if req.Score != nil {
		score = *req.Score
	}
	resp, err := s.votes.Handler.CastVoteHandler(
		r.Context(),
		userID,
		req.PhaseID,
		req.Decision,
		score,
		req.Comment,
	)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.WasUpdate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handlePhaseResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "vote.resultats"); !ok {
		return
	}
	resp, err := s.votes.Handler.PhaseResultsHandler(r.Context(), r.PathValue("phase_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrInvalidVoteInput),
		errors.Is(err, voteerrors.ErrBallotMismatch):
		writeError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, voteerrors.ErrVoteNotFound):
		writeError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrPhaseNotFound):
		writeError(w, http.StatusNotFound, "phase_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrPhaseNotVotable):
		writeError(w, http.StatusPreconditionFailed, "phase_not_votable", err.Error())
	case errors.Is(err, voteerrors.ErrConflict):
		writeError(w, http.StatusConflict, "vote_conflict", err.Error())
	case errors.Is(err, voteerrors.ErrNoVotes):
		writeError(w, http.StatusConflict, "no_votes", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
