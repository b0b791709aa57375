package services

import "errors"

// Errors raised by the resource services before any request is issued.
// Server-reported failures surface as the gateway package's errors instead.
var (
	ErrTeamNameRequired = errors.New("team name is required")
	ErrHostTeamRequired = errors.New("select a host team first")

	ErrSubmissionFileRequired = errors.New("submission input file is required")

	ErrChallengeIDRequired  = errors.New("challenge id is required")
	ErrPhaseIDRequired      = errors.New("challenge phase id is required")
	ErrPhaseSplitIDRequired = errors.New("challenge phase split id is required")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
)
