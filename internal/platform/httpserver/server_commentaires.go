package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	commenterrors "quorum/contexts/deliberation/comment-service/domain/errors"
	commenthttp "quorum/contexts/deliberation/comment-service/transport/http"
)

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "commentaire.ajouter")
	if !ok {
		return
	}
	var req commenthttp.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.comments.Handler.AddCommentHandler(
		r.Context(),
		userID,
		req.DossierID,
		req.PhaseID,
		req.Body,
	)
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListDossierComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "commentaire.lister"); !ok {
		return
	}
	resp, err := s.comments.Handler.ListDossierCommentsHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPhaseComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "commentaire.lister"); !ok {
		return
	}
	resp, err := s.comments.Handler.ListPhaseCommentsHandler(r.Context(), r.PathValue("phase_id"))
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "commentaire.lister"); !ok {
		return
	}
	resp, err := s.comments.Handler.CountCommentsHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeCommentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commenterrors.ErrInvalidCommentInput):
		writeError(w, http.StatusBadRequest, "invalid_comment_input", err.Error())
	case errors.Is(err, commenterrors.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, "comment_not_found", err.Error())
	case errors.Is(err, commenterrors.ErrDossierNotFound):
		writeError(w, http.StatusNotFound, "dossier_not_found", err.Error())
	case errors.Is(err, commenterrors.ErrPhaseNotFound):
		writeError(w, http.StatusNotFound, "phase_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
