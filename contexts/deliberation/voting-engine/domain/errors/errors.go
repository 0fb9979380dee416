package errors

import "errors"

var (
	ErrInvalidVoteInput = errors.New("invalid vote input")
	ErrVoteNotFound     = errors.New("vote not found")
	ErrPhaseNotFound    = errors.New("phase not found")
	ErrPhaseNotVotable  = errors.New("phase is not an active vote phase")
	ErrBallotMismatch   = errors.New("vote value does not match the phase ballot")
	ErrConflict         = errors.New("vote conflict")
	ErrNoVotes          = errors.New("phase has no votes")
)
