package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

type VoteRepository interface {
	// CastBallot persists the ballot, increments the candidate's cached vote
	// count and records the voter for the session, all in one transaction.
	// A (voter, session, position) uniqueness violation surfaces as
	// domain.ErrDuplicateVote.
	CastBallot(ctx context.Context, ballot *domain.Ballot) error

	HasVoted(ctx context.Context, voterID, sessionID, positionID uuid.UUID) (bool, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Ballot, error)
	ListByVoter(ctx context.Context, sessionID, voterID uuid.UUID) ([]domain.Ballot, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	ListNonVoters(ctx context.Context, sessionID uuid.UUID) ([]*domain.User, error)
}

type CastBallotInput struct {
	VoterID     uuid.UUID
	SessionID   uuid.UUID
	CandidateID uuid.UUID
}

type VoteService interface {
	CastBallot(ctx context.Context, input CastBallotInput) (*domain.Ballot, error)
	BallotsForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.Ballot, error)
	MyBallots(ctx context.Context, sessionID, voterID uuid.UUID) ([]domain.Ballot, error)
	RebuildVoteCounts(ctx context.Context, sessionID uuid.UUID) error
}
