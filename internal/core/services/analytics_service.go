package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
	"github.com/pickme/voting/internal/core/tally"
)

type analyticsService struct {
	sessionRepo   ports.SessionRepository
	candidateRepo ports.CandidateRepository
	voteRepo      ports.VoteRepository
	orgRepo       ports.OrganizationRepository
}

func NewAnalyticsService(
	sessionRepo ports.SessionRepository,
	candidateRepo ports.CandidateRepository,
	voteRepo ports.VoteRepository,
	orgRepo ports.OrganizationRepository,
) ports.AnalyticsService {
	return &analyticsService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
		orgRepo:       orgRepo,
	}
}

// Analyze works on active sessions (live numbers) and closed sessions
// (final ledger); a pending session has nothing to report.
func (s *analyticsService) Analyze(ctx context.Context, sessionID uuid.UUID) (*domain.SessionAnalytics, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionPending {
		return nil, domain.ErrSessionNotStarted
	}

	org, err := s.orgRepo.GetByID(ctx, session.OrganizationID)
	if err != nil {
		return nil, err
	}

	ballots, err := s.voteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	end := session.EndAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	participation := tally.Bucketize(ballots, session.StartAt, end)

	candidates, err := s.candidateRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	positions, err := s.candidateRepo.ListPositions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	tallied := tally.Compute(ballots, candidates, positions)

	return &domain.SessionAnalytics{
		SessionID:        session.ID,
		SessionTitle:     session.Title,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		DurationHours:    participation.DurationHours,
		PeakType:         participation.PeakType,
		PeakVotingTime:   participation.PeakVotingTime,
		PeakData:         participation.PeakData,
		PositionResults:  tallied.Breakdown,
		PositionWinners:  tallied.Winners,
	}, nil
}
