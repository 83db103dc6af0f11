package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ballot is one voter's choice for one candidate in one contested position.
// Ballots are append-only; the (voter, session, position) triple is unique.
type Ballot struct {
	ID          uuid.UUID `json:"id"`
	VoterID     uuid.UUID `json:"voter_id"`
	SessionID   uuid.UUID `json:"session_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	// PositionID is copied from the candidate at cast time, never supplied by
	// the caller.
	PositionID uuid.UUID `json:"position_id"`
	CastAt     time.Time `json:"cast_at"`
}
