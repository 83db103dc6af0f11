package domain

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStanding is one candidate's line in a position breakdown.
// Percentage is rounded to two decimal places.
type CandidateStanding struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Votes       int64     `json:"votes"`
	Percentage  float64   `json:"percentage"`
}

type Winner struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Votes       int64     `json:"votes"`
}

// Result is the breakdown persisted exactly once when a session closes.
// Breakdown and Winners are keyed by position name.
type Result struct {
	ID          uuid.UUID                      `json:"id"`
	SessionID   uuid.UUID                      `json:"session_id"`
	Breakdown   map[string][]CandidateStanding `json:"results"`
	Winners     map[string]*Winner             `json:"winners"`
	GeneratedAt time.Time                      `json:"generated_at"`
}

// ResultSummary lists a closed session with its winners by name, for the
// cross-session results listing.
type ResultSummary struct {
	SessionID uuid.UUID         `json:"session_id"`
	Title     string            `json:"title"`
	StartAt   time.Time         `json:"start_at"`
	EndAt     time.Time         `json:"end_at"`
	Winners   map[string]string `json:"winners"`
}
