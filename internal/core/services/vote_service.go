package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
	"github.com/pickme/voting/internal/core/ports"
)

type voteService struct {
	sessionRepo   ports.SessionRepository
	candidateRepo ports.CandidateRepository
	voteRepo      ports.VoteRepository
}

func NewVoteService(sessionRepo ports.SessionRepository, candidateRepo ports.CandidateRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		sessionRepo:   sessionRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
	}
}

func (s *voteService) CastBallot(ctx context.Context, input ports.CastBallotInput) (*domain.Ballot, error) {
	session, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	candidate, err := s.candidateRepo.GetByID(ctx, input.CandidateID)
	if err != nil {
		return nil, err
	}
	if candidate.SessionID != input.SessionID {
		return nil, domain.ErrCandidateSessionMismatch
	}

	// The contested position comes from the candidate row, so a caller can
	// never vote into a position the candidate does not hold.
	hasVoted, err := s.voteRepo.HasVoted(ctx, input.VoterID, input.SessionID, candidate.PositionID)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, domain.ErrDuplicateVote
	}

	ballot := &domain.Ballot{
		ID:          uuid.New(),
		VoterID:     input.VoterID,
		SessionID:   input.SessionID,
		CandidateID: input.CandidateID,
		PositionID:  candidate.PositionID,
		CastAt:      time.Now().UTC(),
	}

	// The repository runs the insert, the counter increment and the
	// recorded-voters upsert in one transaction; the unique constraint on
	// (voter, session, position) is the backstop for races past the
	// HasVoted pre-check.
	if err := s.voteRepo.CastBallot(ctx, ballot); err != nil {
		return nil, err
	}

	return ballot, nil
}

func (s *voteService) BallotsForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.Ballot, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.voteRepo.ListBySession(ctx, sessionID)
}

func (s *voteService) MyBallots(ctx context.Context, sessionID, voterID uuid.UUID) ([]domain.Ballot, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.voteRepo.ListByVoter(ctx, sessionID, voterID)
}

func (s *voteService) RebuildVoteCounts(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.candidateRepo.RebuildVoteCounts(ctx, sessionID)
}
