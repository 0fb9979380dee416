package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitDossierRequest struct {
	Reference      string `json:"reference,omitempty"`
	RequestTypeID  string `json:"request_type_id"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterEmail string `json:"submitter_email,omitempty"`
}

type DossierResponse struct {
	DossierID      string `json:"dossier_id"`
	Reference      string `json:"reference"`
	Status         string `json:"status"`
	RequestTypeID  string `json:"request_type_id"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterEmail string `json:"submitter_email,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type DossierListResponse struct {
	Items []DossierResponse `json:"items"`
}

type TransitionResponse struct {
	TransitionID string `json:"transition_id"`
	DossierID    string `json:"dossier_id"`
	FromStatus   string `json:"from_status,omitempty"`
	ToStatus     string `json:"to_status"`
	ActorID      string `json:"actor_id"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type TransitionListResponse struct {
	Items []TransitionResponse `json:"items"`
}
