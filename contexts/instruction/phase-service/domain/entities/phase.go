package entities

import "time"

type Kind string

const (
	KindDiscussion Kind = "DISCUSSION"
	KindVote       Kind = "VOTE"
)

func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindDiscussion, KindVote:
		return Kind(raw), true
	default:
		return "", false
	}
}

// Ballot selects the vote value model for a VOTE phase: AVIS collects
// categorical decisions, NOTE collects 0-20 scores. Discussion phases carry
// no ballot.
type Ballot string

const (
	BallotAvis Ballot = "AVIS"
	BallotNote Ballot = "NOTE"
)

func ParseBallot(raw string) (Ballot, bool) {
	switch Ballot(raw) {
	case BallotAvis, BallotNote:
		return Ballot(raw), true
	default:
		return "", false
	}
}

// Phase is a bounded period of collegial work on a dossier. EndedAt is nil
// exactly while the phase is active; once set it never moves.
type Phase struct {
	PhaseID        string
	DossierID      string
	Kind           Kind
	Ballot         Ballot
	Description    string
	StartedAt      time.Time
	EndedAt        *time.Time
	TargetCloseAt  *time.Time
	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p Phase) Active() bool {
	return p.EndedAt == nil
}
