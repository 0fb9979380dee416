package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddCommentRequest struct {
	DossierID string `json:"dossier_id,omitempty"`
	PhaseID   string `json:"phase_id,omitempty"`
	Body      string `json:"body"`
}

type CommentResponse struct {
	CommentID string `json:"comment_id"`
	DossierID string `json:"dossier_id"`
	PhaseID   string `json:"phase_id,omitempty"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type CommentListResponse struct {
	Items []CommentResponse `json:"items"`
	Total int               `json:"total"`
}

type CommentCountResponse struct {
	DossierID string `json:"dossier_id"`
	Count     int64  `json:"count"`
}
