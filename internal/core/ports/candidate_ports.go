package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/pickme/voting/internal/core/domain"
)

type CandidateRepository interface {
	SavePosition(ctx context.Context, position *domain.Position) error
	ListPositions(ctx context.Context, sessionID uuid.UUID) ([]domain.Position, error)
	Save(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Candidate, error)
	Update(ctx context.Context, candidate *domain.Candidate) error

	// RebuildVoteCounts replaces every denormalized candidate counter for the
	// session with the count replayed from the ballot ledger.
	RebuildVoteCounts(ctx context.Context, sessionID uuid.UUID) error
}

type AddPositionInput struct {
	SessionID uuid.UUID
	Name      string
}

type AddCandidateInput struct {
	SessionID  uuid.UUID
	PositionID uuid.UUID
	Name       string
	PhotoURL   string
}

type UpdateCandidateInput struct {
	Name       *string
	PositionID *uuid.UUID
	PhotoURL   *string
}

type CandidateService interface {
	AddPosition(ctx context.Context, input AddPositionInput) (*domain.Position, error)
	AddCandidate(ctx context.Context, input AddCandidateInput) (*domain.Candidate, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Candidate, error)
	UpdateCandidate(ctx context.Context, candidateID uuid.UUID, input UpdateCandidateInput) (*domain.Candidate, error)
}
