package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	commentservice "quorum/contexts/deliberation/comment-service"
	votingengine "quorum/contexts/deliberation/voting-engine"
	authorization "quorum/contexts/identity-access/authorization-service"
	dossierservice "quorum/contexts/instruction/dossier-service"
	phaseservice "quorum/contexts/instruction/phase-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	dossiers      dossierservice.Module
	phases        phaseservice.Module
	votes         votingengine.Module
	comments      commentservice.Module
	authorization authorization.Module
}

func New(
	dossiers dossierservice.Module,
	phases phaseservice.Module,
	votes votingengine.Module,
	comments commentservice.Module,
	authorizationModule authorization.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		dossiers:      dossiers,
		phases:        phases,
		votes:         votes,
		comments:      comments,
		authorization: authorizationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// ServeHTTP exposes the mux for handler-level tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /dossiers", s.handleSubmitDossier)
	s.mux.HandleFunc("GET /dossiers", s.handleListDossiers)
	s.mux.HandleFunc("GET /dossiers/{dossier_id}", s.handleGetDossier)
	s.mux.HandleFunc("GET /dossiers/{dossier_id}/historique", s.handleDossierHistory)
	s.mux.HandleFunc("PUT /dossiers/{dossier_id}/statut", s.handleChangeDossierStatus)

	s.mux.HandleFunc("POST /phases/{kind}", s.handleOpenPhase)
	s.mux.HandleFunc("PUT /phases/{phase_id}/prolonger", s.handleExtendPhase)
	s.mux.HandleFunc("PUT /phases/{phase_id}/terminer", s.handleClosePhase)
	s.mux.HandleFunc("GET /phases/dossier/{dossier_id}", s.handleListPhases)
	s.mux.HandleFunc("GET /phases/dossier/{dossier_id}/active", s.handleGetActivePhase)
	s.mux.HandleFunc("GET /phases/{phase_id}/resultats", s.handlePhaseResults)

	s.mux.HandleFunc("POST /votes", s.handleCastVote)
	s.mux.HandleFunc("GET /votes/phase/{phase_id}/statistiques", s.handlePhaseResults)

	s.mux.HandleFunc("POST /commentaires", s.handleAddComment)
	s.mux.HandleFunc("GET /commentaires/dossier/{dossier_id}", s.handleListDossierComments)
	s.mux.HandleFunc("GET /commentaires/dossier/{dossier_id}/total", s.handleCountComments)
	s.mux.HandleFunc("GET /commentaires/phase/{phase_id}", s.handleListPhaseComments)

	s.mux.HandleFunc("POST /api/authz/v1/check", s.handleAuthzCheck)
	s.mux.HandleFunc("GET /api/authz/v1/users/{user_id}/roles", s.handleAuthzListUserRoles)
	s.mux.HandleFunc("POST /api/authz/v1/roles/grant", s.handleAuthzGrantRole)
	s.mux.HandleFunc("POST /api/authz/v1/roles/revoke", s.handleAuthzRevokeRole)
}

// identify resolves the request identity and gates it on a workflow
// permission. A missing X-User-Id header is 401, a failed or negative
// permission check is 403.
func (s *Server) identify(w http.ResponseWriter, r *http.Request, permission string) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	allowed, err := s.authorization.Handler.Allowed(r.Context(), userID, permission)
	if err != nil {
		writeError(w, http.StatusForbidden, "permission_check_failed", "permission could not be verified")
		return "", false
	}
	if !allowed {
		s.logger.Warn("request denied",
			"event", "http_request_denied",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"user_id", userID,
			"permission", permission,
			"path", r.URL.Path,
		)
		writeError(w, http.StatusForbidden, "forbidden", "missing permission "+permission)
		return "", false
	}
	return userID, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
