package entities

import "time"

type Status string

const (
	StatusSoumis    Status = "SOUMIS"
	StatusComplet   Status = "COMPLET"
	StatusIncomplet Status = "INCOMPLET"
	StatusEnCours   Status = "EN_COURS"
	StatusApprouve  Status = "APPROUVE"
	StatusRejete    Status = "REJETE"
)

// allowedTransitions is the complete edge set of the dossier state machine.
// No other mutation path exists.
var allowedTransitions = map[Status][]Status{
	StatusSoumis:  {StatusComplet, StatusIncomplet},
	StatusComplet: {StatusEnCours},
	StatusEnCours: {StatusApprouve, StatusRejete},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
// INCOMPLET is terminal for automatic progression; re-entry is a policy
// decision left to the caller and requires a new submission.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusSoumis, StatusComplet, StatusIncomplet, StatusEnCours, StatusApprouve, StatusRejete:
		return Status(raw), true
	default:
		return "", false
	}
}

// Dossier is a case record moving through the review workflow. It is mutated
// only through state machine commands.
type Dossier struct {
	DossierID      string
	Reference      string
	Status         Status
	RequestTypeID  string
	SubmitterName  string
	SubmitterEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StatusTransition is the audit record written for every status change.
type StatusTransition struct {
	TransitionID string
	DossierID    string
	FromStatus   Status
	ToStatus     Status
	ActorID      string
	Comment      string
	CreatedAt    time.Time
}
