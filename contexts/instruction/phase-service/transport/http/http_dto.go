package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PhaseResponse struct {
	PhaseID       string `json:"phase_id"`
	DossierID     string `json:"dossier_id"`
	Kind          string `json:"kind"`
	Ballot        string `json:"ballot,omitempty"`
	Description   string `json:"description,omitempty"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at,omitempty"`
	TargetCloseAt string `json:"target_close_at,omitempty"`
	Active        bool   `json:"active"`
}

type PhaseListResponse struct {
	Items []PhaseResponse `json:"items"`
}
