package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("voting session not found")
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrPositionNotFound     = errors.New("position not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrResultNotFound       = errors.New("result not found")

	ErrSessionNotActive  = errors.New("voting session is not active")
	ErrSessionNotPending = errors.New("voting session is not pending")
	ErrSessionActive     = errors.New("voting session is active")
	ErrSessionNotStarted = errors.New("voting session has not started")
	ErrResultsNotReady   = errors.New("results are not available yet")

	ErrCandidateSessionMismatch = errors.New("candidate does not belong to this session")
	ErrDuplicateVote            = errors.New("voter has already voted for this position")

	ErrNotAdmin = errors.New("only organization admins can perform this action")

	// ErrResultMismatch means a tally recomputed from the ballot ledger
	// diverged from the persisted result. It indicates data corruption and
	// is never surfaced to end users.
	ErrResultMismatch = errors.New("recomputed tally does not match persisted result")
)
