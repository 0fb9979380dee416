package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	phaseerrors "quorum/contexts/instruction/phase-service/domain/errors"
)

func (s *Server) handleOpenPhase(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "phase.ouvrir")
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.phases.Handler.OpenPhaseHandler(
		r.Context(),
		userID,
		r.PathValue("kind"),
		query.Get("dossierId"),
		query.Get("description"),
		query.Get("bareme"),
	)
	if err != nil {
		writePhaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleExtendPhase(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "phase.prolonger")
	if !ok {
		return
	}
	days, err := strconv.Atoi(r.URL.Query().Get("joursSupplementaires"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_days", "joursSupplementaires must be an integer")
		return
	}
	resp, err := s.phases.Handler.ExtendPhaseHandler(r.Context(), userID, r.PathValue("phase_id"), days)
	if err != nil {
		writePhaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClosePhase(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(w, r, "phase.terminer")
	if !ok {
		return
	}
	resp, err := s.phases.Handler.ClosePhaseHandler(r.Context(), userID, r.PathValue("phase_id"))
	if err != nil {
		writePhaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "phase.consulter"); !ok {
		return
	}
	resp, err := s.phases.Handler.ListPhasesHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writePhaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetActivePhase(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identify(w, r, "phase.consulter"); !ok {
		return
	}
	resp, found, err := s.phases.Handler.GetActivePhaseHandler(r.Context(), r.PathValue("dossier_id"))
	if err != nil {
		writePhaseDomainError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no_active_phase", "dossier has no active phase")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePhaseDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, phaseerrors.ErrInvalidPhaseInput),
		errors.Is(err, phaseerrors.ErrInvalidExtension):
		writeError(w, http.StatusBadRequest, "invalid_phase_input", err.Error())
	case errors.Is(err, phaseerrors.ErrPhaseNotFound):
		writeError(w, http.StatusNotFound, "phase_not_found", err.Error())
	case errors.Is(err, phaseerrors.ErrDossierNotFound):
		writeError(w, http.StatusNotFound, "dossier_not_found", err.Error())
	case errors.Is(err, phaseerrors.ErrDossierNotUnderReview),
		errors.Is(err, phaseerrors.ErrActivePhaseExists):
		writeError(w, http.StatusConflict, "phase_conflict", err.Error())
	case errors.Is(err, phaseerrors.ErrPhaseClosed):
		writeError(w, http.StatusPreconditionFailed, "phase_closed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
