package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	dossiererrors "quorum/contexts/instruction/dossier-service/domain/errors"
	dossierhttp "quorum/contexts/instruction/dossier-service/transport/http"
)

func (s *Server) handleSubmitDossier(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "dossier.creer")
	if !ok {
		return
	}
	var req dossierhttp.SubmitDossierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.dossiers.Handler.SubmitDossierHandler(r.Context(), userID, req)
	if err != nil {
		writeDossierDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListDossiers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "dossier.consulter"); !ok {
		return
	}
	resp, err := s.dossiers.Handler.ListDossiersHandler(r.Context(), r.URL.Query().Get("statut"))
	if err != nil {
		writeDossierDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDossier(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "dossier.consulter"); !ok {
		return
	}
	resp, err := s.dossiers.Handler.GetDossierHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writeDossierDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDossierHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "dossier.consulter"); !ok {
		return
	}
	resp, err := s.dossiers.Handler.ListTransitionsHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writeDossierDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChangeDossierStatus gates on a permission derived from the target
// status: completeness review, instruction start, and final decisions are
// held by different roles.
func (s *Server) handleChangeDossierStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	statut := strings.ToUpper(strings.TrimSpace(query.Get("statut")))
	auto := query.Get("auto") == "true"

	permission, ok := statusChangePermission(statut, auto)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown target status")
		return
	}
	userID, ok := s.identify(w, r, permission)
	if !ok {
		return
	}

	resp, err := s.dossiers.Handler.ChangeStatusHandler(
		r.Context(),
		userID,
		r.PathValue("dossier_id"),
		statut,
		query.Get("commentaire"),
		auto,
	)
	if err != nil {
		writeDossierDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusChangePermission(statut string, auto bool) (string, bool) {
	if auto {
		return "dossier.decision", true
	}
	switch statut {
	case "COMPLET", "INCOMPLET":
		return "dossier.completude", true
	case "EN_COURS":
		return "dossier.instruction", true
	case "APPROUVE", "REJETE":
		return "dossier.decision", true
	default:
		return "", false
	}
}

func writeDossierDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dossiererrors.ErrInvalidDossierInput):
		writeError(w, http.StatusBadRequest, "invalid_dossier_input", err.Error())
	case errors.Is(err, dossiererrors.ErrDossierNotFound):
		writeError(w, http.StatusNotFound, "dossier_not_found", err.Error())
	case errors.Is(err, dossiererrors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, dossiererrors.ErrActivePhaseOpen):
		writeError(w, http.StatusConflict, "active_phase_open", err.Error())
	case errors.Is(err, dossiererrors.ErrDecisionNotDerivable):
		writeError(w, http.StatusConflict, "decision_not_derivable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
