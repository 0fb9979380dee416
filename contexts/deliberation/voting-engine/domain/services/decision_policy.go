package services

import (
	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
)

// Outcome is the dossier decision derived from a closed VOTE phase.
type Outcome string

const (
	OutcomeApprouve Outcome = "APPROUVE"
	OutcomeRejete   Outcome = "REJETE"
)

// ApprovalScoreThreshold is the mean score at or above which a NOTE phase
// derives an approval.
const ApprovalScoreThreshold = 10.0

// DecideByMajority derives the outcome of an AVIS phase: approval iff
// FAVORABLE votes strictly outnumber DEFAVORABLE votes. COMPLEMENT_REQUIS
// votes count toward the total but toward neither side.
func DecideByMajority(counts []entities.DecisionCount) (Outcome, error) {
	total := 0
	favorable := 0
	defavorable := 0
	for _, count := range counts {
		total += count.Count
		switch count.Decision {
		case entities.DecisionFavorable:
			favorable = count.Count
		case entities.DecisionDefavorable:
			defavorable = count.Count
		}
	}
	if total == 0 {
		return "", domainerrors.ErrNoVotes
	}
	if favorable > defavorable {
		return OutcomeApprouve, nil
	}
	return OutcomeRejete, nil
}

// DecideByMeanThreshold derives the outcome of a NOTE phase: approval iff the
// mean score reaches ApprovalScoreThreshold.
func DecideByMeanThreshold(stats entities.ScoreStatistics) (Outcome, error) {
	if stats.Count == 0 {
		return "", domainerrors.ErrNoVotes
	}
	if stats.Mean >= ApprovalScoreThreshold {
		return OutcomeApprouve, nil
	}
	return OutcomeRejete, nil
}

// DeriveOutcome applies the policy matching the phase ballot.
func DeriveOutcome(results entities.PhaseResults) (Outcome, error) {
	switch results.Ballot {
	case entities.BallotNote:
		if results.Score == nil {
			return "", domainerrors.ErrNoVotes
		}
		return DecideByMeanThreshold(*results.Score)
	default:
		return DecideByMajority(results.Decisions)
	}
}
