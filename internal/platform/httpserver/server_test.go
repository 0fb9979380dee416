package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	commentservice "quorum/contexts/deliberation/comment-service"
	votingengine "quorum/contexts/deliberation/voting-engine"
	votememory "quorum/contexts/deliberation/voting-engine/adapters/memory"
	voteports "quorum/contexts/deliberation/voting-engine/ports"
	authorization "quorum/contexts/identity-access/authorization-service"
	dossierservice "quorum/contexts/instruction/dossier-service"
	phaseservice "quorum/contexts/instruction/phase-service"
)

func newTestServer(t *testing.T, phases []voteports.PhaseProjection) *Server {
	t.Helper()
	dossiers := dossierservice.NewInMemoryModule(nil, nil, nil, nil, nil)
	phaseModule := phaseservice.NewInMemoryModule(nil, nil, nil)
	votes := votingengine.NewInMemoryModule(nil, votememory.NewPhaseReaderStub(phases), nil)
	comments := commentservice.NewInMemoryModule(nil, nil, nil, nil)
	authModule := authorization.NewInMemoryModule(nil)
	return New(dossiers, phaseModule, votes, comments, authModule, nil, "")
}

func doRequest(t *testing.T, server *Server, method string, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func grantRole(t *testing.T, server *Server, userID string, role string) {
	t.Helper()
	rec := doRequest(t, server, http.MethodPost, "/api/authz/v1/roles/grant", "admin-1", map[string]string{
		"user_id": userID,
		"role":    role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant role failed with status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequestWithoutIdentityRejected(t *testing.T) {
	server := newTestServer(t, nil)

	rec := doRequest(t, server, http.MethodPost, "/dossiers", "", map[string]string{
		"request_type_id": "subvention",
		"submitter_name":  "Jean Dupont",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body failed: %v", err)
	}
	if body.Code != "missing_user" {
		t.Fatalf("unexpected error code %s", body.Code)
	}
}

func TestRequestWithoutPermissionRejected(t *testing.T) {
	server := newTestServer(t, nil)
	grantRole(t, server, "member-1", "MEMBRE_COMITE")

	// Committee members cannot open dossiers.
	rec := doRequest(t, server, http.MethodPost, "/dossiers", "member-1", map[string]string{
		"request_type_id": "subvention",
		"submitter_name":  "Jean Dupont",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body failed: %v", err)
	}
	if body.Code != "forbidden" {
		t.Fatalf("unexpected error code %s", body.Code)
	}
}

func TestUserWithoutAnyRoleRejected(t *testing.T) {
	server := newTestServer(t, nil)

	rec := doRequest(t, server, http.MethodGet, "/dossiers", "stranger-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown user, got %d", rec.Code)
	}
}

func TestSubmitThenFetchDossier(t *testing.T) {
	server := newTestServer(t, nil)
	grantRole(t, server, "agent-1", "AGENT_INSTRUCTION")

	rec := doRequest(t, server, http.MethodPost, "/dossiers", "agent-1", map[string]string{
		"request_type_id": "subvention",
		"submitter_name":  "Jean Dupont",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		DossierID string `json:"dossier_id"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created dossier failed: %v", err)
	}
	if created.Status != "SOUMIS" {
		t.Fatalf("expected SOUMIS, got %s", created.Status)
	}

	rec = doRequest(t, server, http.MethodGet, "/dossiers/"+created.DossierID, "agent-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStatusChangeGatedByTargetStatus(t *testing.T) {
	server := newTestServer(t, nil)
	grantRole(t, server, "agent-1", "AGENT_INSTRUCTION")

	rec := doRequest(t, server, http.MethodPost, "/dossiers", "agent-1", map[string]string{
		"request_type_id": "subvention",
		"submitter_name":  "Jean Dupont",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}
	var created struct {
		DossierID string `json:"dossier_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created dossier failed: %v", err)
	}

	// The intake agent can mark completeness but cannot start instruction.
	rec = doRequest(t, server, http.MethodPut, "/dossiers/"+created.DossierID+"/statut?statut=COMPLET", "agent-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("completeness change failed: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, server, http.MethodPut, "/dossiers/"+created.DossierID+"/statut?statut=EN_COURS", "agent-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent starting instruction, got %d", rec.Code)
	}

	grantRole(t, server, "coord-1", "COORDINATEUR")
	rec = doRequest(t, server, http.MethodPut, "/dossiers/"+created.DossierID+"/statut?statut=EN_COURS", "coord-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("coordinator instruction start failed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, http.MethodPut, "/dossiers/"+created.DossierID+"/statut?statut=ARCHIVE", "coord-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestCastVoteRoute(t *testing.T) {
	server := newTestServer(t, []voteports.PhaseProjection{
		{PhaseID: "phase-1", DossierID: "dossier-1", Kind: "VOTE", Ballot: "AVIS", Active: true},
	})
	grantRole(t, server, "member-1", "MEMBRE_COMITE")

	rec := doRequest(t, server, http.MethodPost, "/votes", "member-1", map[string]string{
		"phase_id": "phase-1",
		"decision": "FAVORABLE",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first cast, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, http.MethodPost, "/votes", "member-1", map[string]string{
		"phase_id": "phase-1",
		"decision": "DEFAVORABLE",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on resubmission, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, http.MethodGet, "/votes/phase/phase-1/statistiques", "member-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on results, got %d: %s", rec.Code, rec.Body.String())
	}
	var results struct {
		TotalVotes int `json:"total_votes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results failed: %v", err)
	}
	if results.TotalVotes != 1 {
		t.Fatalf("expected one vote after resubmission, got %d", results.TotalVotes)
	}
}
