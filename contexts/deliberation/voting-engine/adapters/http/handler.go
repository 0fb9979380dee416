package httpadapter

import (
	"context"
	"log/slog"
	"math"
	"time"

	"quorum/contexts/deliberation/voting-engine/application/commands"
	"quorum/contexts/deliberation/voting-engine/application/queries"
	"quorum/contexts/deliberation/voting-engine/domain/entities"
	httptransport "quorum/contexts/deliberation/voting-engine/transport/http"
)

type Handler struct {
	Votes   commands.VoteUseCase
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	phaseID string,
	decision string,
	score int,
	comment string,
) (httptransport.VoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		PhaseID:  phaseID,
		VoterID:  voterID,
		Decision: entities.Decision(decision),
		Score:    score,
		Comment:  comment,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(result.Vote, result.WasUpdate), nil
}

func (h Handler) PhaseResultsHandler(ctx context.Context, phaseID string) (httptransport.PhaseResultsResponse, error) {
	results, err := h.Results.PhaseResults(ctx, phaseID)
	if err != nil {
		return httptransport.PhaseResultsResponse{}, err
	}
	return mapResults(results), nil
}

func mapVote(vote entities.Vote, wasUpdate bool) httptransport.VoteResponse {
	resp := httptransport.VoteResponse{
		VoteID:    vote.VoteID,
		PhaseID:   vote.PhaseID,
		VoterID:   vote.VoterID,
		Ballot:    string(vote.Ballot),
		Comment:   vote.Comment,
		WasUpdate: wasUpdate,
		CreatedAt: vote.CreatedAt.Format(time.RFC3339),
		UpdatedAt: vote.UpdatedAt.Format(time.RFC3339),
	}
	if vote.Ballot == entities.BallotAvis {
		resp.Decision = string(vote.Decision)
	} else {
		score := vote.Score
		resp.Score = &score
	}
	return resp
}

func mapResults(results entities.PhaseResults) httptransport.PhaseResultsResponse {
	resp := httptransport.PhaseResultsResponse{
		PhaseID:    results.PhaseID,
		DossierID:  results.DossierID,
		Ballot:     string(results.Ballot),
		TotalVotes: results.TotalVotes,
	}
	for _, count := range results.Decisions {
		resp.Decisions = append(resp.Decisions, httptransport.DecisionCountResponse{
			Decision: string(count.Decision),
			Count:    count.Count,
		})
	}
	if results.Score != nil {
		stats := httptransport.ScoreStatisticsResponse{
			Count:  results.Score.Count,
			Min:    results.Score.Min,
			Max:    results.Score.Max,
			Mean:   roundOneDecimal(results.Score.Mean),
			Median: roundOneDecimal(results.Score.Median),
			StdDev: roundOneDecimal(results.Score.StdDev),
		}
		for _, bucket := range results.Score.Buckets {
			stats.Buckets = append(stats.Buckets, httptransport.ScoreBucketResponse{
				Label:      bucket.Label,
				Count:      bucket.Count,
				Percentage: roundOneDecimal(bucket.Percentage),
			})
		}
		resp.Score = &stats
	}
	return resp
}

func roundOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
