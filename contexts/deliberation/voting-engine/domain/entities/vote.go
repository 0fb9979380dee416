package entities

import "time"

// Ballot mirrors the phase ballot kinds; the value model of every vote in a
// phase is fixed by the phase itself.
type Ballot string

const (
	BallotAvis Ballot = "AVIS"
	BallotNote Ballot = "NOTE"
)

type Decision string

const (
	DecisionFavorable        Decision = "FAVORABLE"
	DecisionDefavorable      Decision = "DEFAVORABLE"
	DecisionComplementRequis Decision = "COMPLEMENT_REQUIS"
)

func ParseDecision(raw string) (Decision, bool) {
	switch Decision(raw) {
	case DecisionFavorable, DecisionDefavorable, DecisionComplementRequis:
		return Decision(raw), true
	default:
		return "", false
	}
}

const (
	ScoreMin = 0
	ScoreMax = 20
)

// Vote is one committee member's input in a VOTE phase. At most one vote
// exists per (phase, voter); resubmission updates in place. The Ballot field
// selects which of Decision/Score carries the value.
type Vote struct {
	VoteID    string
	PhaseID   string
	VoterID   string
	Ballot    Ballot
	Decision  Decision
	Score     int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DecisionCount is one category line of an AVIS aggregate. Categories with
// zero votes are omitted.
type DecisionCount struct {
	Decision Decision
	Count    int
}

// ScoreBucket is one line of the fixed four-range NOTE distribution.
type ScoreBucket struct {
	Label      string
	Low        int
	High       int
	Count      int
	Percentage float64
}

// ScoreStatistics aggregates a NOTE phase at full precision; rounding to one
// decimal happens at the transport layer only.
type ScoreStatistics struct {
	Count   int
	Min     int
	Max     int
	Mean    float64
	Median  float64
	StdDev  float64
	Buckets []ScoreBucket
}

// PhaseResults is the tagged aggregate of a VOTE phase: Decisions for AVIS
// ballots, Score for NOTE ballots.
type PhaseResults struct {
	PhaseID    string
	DossierID  string
	Ballot     Ballot
	TotalVotes int
	Decisions  []DecisionCount
	Score      *ScoreStatistics
}
