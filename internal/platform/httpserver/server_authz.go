package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	authzerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "quorum/contexts/identity-access/authorization-service/transport/http"
)

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req authzhttp.CheckPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.CheckPermissionHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzListUserRoles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.authorization.Handler.ListUserRolesHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzGrantRole(w http.ResponseWriter, r *http.Request) {
	actorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req authzhttp.GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.GrantRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAuthzRevokeRole(w http.ResponseWriter, r *http.Request) {
	actorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req authzhttp.RevokeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.RevokeRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidUserID),
		errors.Is(err, authzerrors.ErrInvalidRole),
		errors.Is(err, authzerrors.ErrInvalidPermission),
		errors.Is(err, authzerrors.ErrInvalidActorID):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, authzerrors.ErrRoleAlreadyAssigned),
		errors.Is(err, authzerrors.ErrRoleNotAssigned):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, authzerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
