package domain

import "github.com/google/uuid"

// SessionAnalytics is the participation-over-time report for a live or
// closed session.
type SessionAnalytics struct {
	SessionID        uuid.UUID                      `json:"session_id"`
	SessionTitle     string                         `json:"session_title"`
	OrganizationID   uuid.UUID                      `json:"organization_id"`
	OrganizationName string                         `json:"organization_name"`
	DurationHours    float64                        `json:"duration_in_hours"`
	PeakType         string                         `json:"peak_type"`
	PeakVotingTime   string                         `json:"peak_voting_time"`
	PeakData         map[string]int64               `json:"peak_data"`
	PositionResults  map[string][]CandidateStanding `json:"position_results"`
	PositionWinners  map[string]*Winner             `json:"position_winners"`
}
