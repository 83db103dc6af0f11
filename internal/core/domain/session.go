package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

// Status transitions are monotonic: pending -> active -> closed.
const (
	SessionPending SessionStatus = "pending"
	SessionActive  SessionStatus = "active"
	SessionClosed  SessionStatus = "closed"
)

type VotingSession struct {
	ID             uuid.UUID     `json:"id"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	CreatedBy      uuid.UUID     `json:"created_by"`
	Title          string        `json:"title"`
	StartAt        time.Time     `json:"start_at"`
	EndAt          time.Time     `json:"end_at"`
	Status         SessionStatus `json:"status"`
	Positions      []Position    `json:"positions,omitempty"`
	Candidates     []Candidate   `json:"candidates,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Position is a contested seat within a session. It is a referenced entity
// rather than a free-text label so two candidates can never fragment the same
// seat through a typo.
type Position struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
