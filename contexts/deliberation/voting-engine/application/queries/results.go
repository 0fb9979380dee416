package queries

import (
	"context"
	"math"
	"sort"
	"strings"

	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	"quorum/contexts/deliberation/voting-engine/domain/services"
	"quorum/contexts/deliberation/voting-engine/ports"
)

// scoreBuckets are the four fixed ranges of the NOTE distribution.
var scoreBuckets = [4]struct {
	label string
	low   int
	high  int
}{
	{"0-5", 0, 5},
	{"6-10", 6, 10},
	{"11-15", 11, 15},
	{"16-20", 16, 20},
}

// ResultsUseCase serves read-only vote aggregates.
type ResultsUseCase struct {
	Votes  ports.VoteRepository
	Phases ports.PhaseReader
}

// PhaseResults aggregates all votes of a VOTE phase. The phase does not need
// to be active; results stay readable after close.
func (uc ResultsUseCase) PhaseResults(ctx context.Context, phaseID string) (entities.PhaseResults, error) {
	phaseID = strings.TrimSpace(phaseID)
	if phaseID == "" {
		return entities.PhaseResults{}, domainerrors.ErrInvalidVoteInput
	}
	phase, err := uc.Phases.GetPhase(ctx, phaseID)
	if err != nil {
		return entities.PhaseResults{}, err
	}
	if phase.Kind != "VOTE" {
		return entities.PhaseResults{}, domainerrors.ErrPhaseNotVotable
	}
	votes, err := uc.Votes.ListVotesByPhase(ctx, phaseID)
	if err != nil {
		return entities.PhaseResults{}, err
	}

	results := entities.PhaseResults{
		PhaseID:    phase.PhaseID,
		DossierID:  phase.DossierID,
		Ballot:     entities.Ballot(phase.Ballot),
		TotalVotes: len(votes),
	}
	if results.Ballot == entities.BallotNote {
		stats := computeScoreStatistics(votes)
		results.Score = &stats
	} else {
		results.Decisions = countDecisions(votes)
	}
	return results, nil
}

// DeriveDossierOutcome applies the named decision policy to the most recent
// closed VOTE phase of a dossier.
func (uc ResultsUseCase) DeriveDossierOutcome(ctx context.Context, dossierID string) (services.Outcome, error) {
	dossierID = strings.TrimSpace(dossierID)
	if dossierID == "" {
		return "", domainerrors.ErrInvalidVoteInput
	}
	phase, found, err := uc.Phases.LatestClosedVotePhase(ctx, dossierID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domainerrors.ErrNoVotes
	}
	results, err := uc.PhaseResults(ctx, phase.PhaseID)
	if err != nil {
		return "", err
	}
	return services.DeriveOutcome(results)
}

// countDecisions reports categories in canonical order, omitting zero counts.
func countDecisions(votes []entities.Vote) []entities.DecisionCount {
	tally := make(map[entities.Decision]int, 3)
	for _, vote := range votes {
		tally[vote.Decision]++
	}
	order := []entities.Decision{
		entities.DecisionFavorable,
		entities.DecisionDefavorable,
		entities.DecisionComplementRequis,
	}
	counts := make([]entities.DecisionCount, 0, len(order))
	for _, decision := range order {
		if tally[decision] > 0 {
			counts = append(counts, entities.DecisionCount{
				Decision: decision,
				Count:    tally[decision],
			})
		}
	}
	return counts
}

func computeScoreStatistics(votes []entities.Vote) entities.ScoreStatistics {
	stats := entities.ScoreStatistics{
		Count:   len(votes),
		Buckets: make([]entities.ScoreBucket, len(scoreBuckets)),
	}
	for i, bucket := range scoreBuckets {
		stats.Buckets[i] = entities.ScoreBucket{
			Label: bucket.label,
			Low:   bucket.low,
			High:  bucket.high,
		}
	}
	if len(votes) == 0 {
		return stats
	}

	scores := make([]int, 0, len(votes))
	sum := 0
	for _, vote := range votes {
		scores = append(scores, vote.Score)
		sum += vote.Score
		for i, bucket := range scoreBuckets {
			if vote.Score >= bucket.low && vote.Score <= bucket.high {
				stats.Buckets[i].Count++
				break
			}
		}
	}
	sort.Ints(scores)

	stats.Min = scores[0]
	stats.Max = scores[len(scores)-1]
	stats.Mean = float64(sum) / float64(len(scores))

	middle := len(scores) / 2
	if len(scores)%2 == 1 {
		stats.Median = float64(scores[middle])
	} else {
		stats.Median = float64(scores[middle-1]+scores[middle]) / 2
	}

	variance := 0.0
	for _, score := range scores {
		diff := float64(score) - stats.Mean
		variance += diff * diff
	}
	stats.StdDev = math.Sqrt(variance / float64(len(scores)))

	for i := range stats.Buckets {
		stats.Buckets[i].Percentage = 100 * float64(stats.Buckets[i].Count) / float64(len(scores))
	}
	return stats
}
