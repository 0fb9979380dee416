package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	PhaseID  string `json:"phase_id"`
	Decision string `json:"decision,omitempty"`
	Score    *int   `json:"score,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

type VoteResponse struct {
	VoteID    string `json:"vote_id"`
	PhaseID   string `json:"phase_id"`
	VoterID   string `json:"voter_id"`
	Ballot    string `json:"ballot"`
	Decision  string `json:"decision,omitempty"`
	Score     *int   `json:"score,omitempty"`
	Comment   string `json:"comment,omitempty"`
	WasUpdate bool   `json:"was_update"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DecisionCountResponse struct {
	Decision string `json:"decision"`
	Count    int    `json:"count"`
}

type ScoreBucketResponse struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ScoreStatisticsResponse struct {
	Count   int                   `json:"count"`
	Min     int                   `json:"min"`
	Max     int                   `json:"max"`
	Mean    float64               `json:"mean"`
	Median  float64               `json:"median"`
	StdDev  float64               `json:"std_dev"`
	Buckets []ScoreBucketResponse `json:"buckets"`
}

type PhaseResultsResponse struct {
	PhaseID    string                   `json:"phase_id"`
	DossierID  string                   `json:"dossier_id"`
	Ballot     string                   `json:"ballot"`
	TotalVotes int                      `json:"total_votes"`
	Decisions  []DecisionCountResponse  `json:"decisions,omitempty"`
	Score      *ScoreStatisticsResponse `json:"score,omitempty"`
}
