package domain

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	PositionID uuid.UUID `json:"position_id"`
	Name       string    `json:"name"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	// VoteCount is a denormalized cache of the ballot ledger. The ledger is
	// the source of truth; see VoteRepository.RebuildVoteCounts.
	VoteCount int64     `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
}
